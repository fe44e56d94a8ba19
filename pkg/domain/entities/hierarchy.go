package entities

import "github.com/shopspring/decimal"

// FlowType classifies how a finished good is made
type FlowType int

const (
	DirectProduction FlowType = iota
	ProductionFlow
	FillingFlow
	ComplexFlow
)

// String method for FlowType enum
func (f FlowType) String() string {
	switch f {
	case ComplexFlow:
		return "Complex flow (RM→WIP→WIPF→FG)"
	case FillingFlow:
		return "Filling flow (RM→WIPF→FG)"
	case ProductionFlow:
		return "Production flow (RM→WIP→FG)"
	default:
		return "Direct production (FG only)"
	}
}

// ClassifyFlow picks the flow from which links are present, complex first
func ClassifyFlow(hasWIPF, hasWIP bool) FlowType {
	switch {
	case hasWIPF && hasWIP:
		return ComplexFlow
	case hasWIPF:
		return FillingFlow
	case hasWIP:
		return ProductionFlow
	default:
		return DirectProduction
	}
}

// HierarchyNode is one resolved level of a finished good's hierarchy
type HierarchyNode struct {
	ID          ItemID
	Code        ItemCode
	Description string
}

// Hierarchy is the resolved FG -> WIPF -> WIP chain of a finished good
type Hierarchy struct {
	FG                HierarchyNode
	WIPF              *HierarchyNode
	WIP               *HierarchyNode
	CalculationFactor decimal.Decimal
	Flow              FlowType
}

// Levels lists the populated nodes from FG downwards
func (h *Hierarchy) Levels() []HierarchyNode {
	levels := []HierarchyNode{h.FG}
	if h.WIPF != nil {
		levels = append(levels, *h.WIPF)
	}
	if h.WIP != nil {
		levels = append(levels, *h.WIP)
	}
	return levels
}
