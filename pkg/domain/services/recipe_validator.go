package services

import (
	"fmt"

	"github.com/vsinha/bomplan/pkg/domain/entities"
)

// RecipeValidator checks the structural integrity of the recipe table
type RecipeValidator struct{}

// NewRecipeValidator creates a new recipe validator
func NewRecipeValidator() *RecipeValidator {
	return &RecipeValidator{}
}

// ValidationResult contains the results of recipe validation
type ValidationResult struct {
	HasCycles      bool
	CyclePaths     [][]entities.ItemID
	DuplicateLines []entities.RecipeLine
	UnknownItems   []entities.ItemID
	Errors         []string
}

// Valid reports whether no problem was found
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Validate checks recipe lines against the item catalog. items may be nil,
// in which case item references and types are not checked.
func (v *RecipeValidator) Validate(lines []entities.RecipeLine, items map[entities.ItemID]*entities.Item) *ValidationResult {
	result := &ValidationResult{
		CyclePaths:     make([][]entities.ItemID, 0),
		DuplicateLines: make([]entities.RecipeLine, 0),
		UnknownItems:   make([]entities.ItemID, 0),
		Errors:         make([]string, 0),
	}

	adjacency := v.buildAdjacency(lines)

	result.CyclePaths = v.detectCycles(adjacency)
	result.HasCycles = len(result.CyclePaths) > 0
	for _, cycle := range result.CyclePaths {
		result.Errors = append(result.Errors, fmt.Sprintf("recipe cycle detected: %v", cycle))
	}

	result.DuplicateLines = v.detectDuplicateLines(lines)
	if len(result.DuplicateLines) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("found %d duplicate recipe lines", len(result.DuplicateLines)))
	}

	if items != nil {
		v.checkItems(lines, items, result)
	}

	return result
}

func (v *RecipeValidator) checkItems(lines []entities.RecipeLine, items map[entities.ItemID]*entities.Item, result *ValidationResult) {
	seen := make(map[entities.ItemID]bool)
	unknown := func(id entities.ItemID) {
		if !seen[id] {
			seen[id] = true
			result.UnknownItems = append(result.UnknownItems, id)
			result.Errors = append(result.Errors, fmt.Sprintf("recipe references unknown item %d", id))
		}
	}

	for _, line := range lines {
		parent, ok := items[line.ParentID]
		if !ok {
			unknown(line.ParentID)
		} else if parent.Type() == entities.RawMaterialType {
			result.Errors = append(result.Errors, fmt.Sprintf("raw material %s cannot have a recipe", parent.Code))
		}
		if _, ok := items[line.ComponentID]; !ok {
			unknown(line.ComponentID)
		}
	}
}

// buildAdjacency creates a parent -> components map without repeated edges
func (v *RecipeValidator) buildAdjacency(lines []entities.RecipeLine) map[entities.ItemID][]entities.ItemID {
	adjacency := make(map[entities.ItemID][]entities.ItemID)
	edges := make(map[string]bool)

	for _, line := range lines {
		if edges[line.Key()] {
			continue
		}
		edges[line.Key()] = true
		adjacency[line.ParentID] = append(adjacency[line.ParentID], line.ComponentID)
	}

	return adjacency
}

// detectCycles uses DFS to find cycles in the recipe graph
func (v *RecipeValidator) detectCycles(adjacency map[entities.ItemID][]entities.ItemID) [][]entities.ItemID {
	visited := make(map[entities.ItemID]bool)
	onStack := make(map[entities.ItemID]bool)
	cycles := make([][]entities.ItemID, 0)

	for parent := range adjacency {
		if !visited[parent] {
			v.dfsDetectCycle(parent, adjacency, visited, onStack, nil, &cycles)
		}
	}

	return cycles
}

func (v *RecipeValidator) dfsDetectCycle(
	current entities.ItemID,
	adjacency map[entities.ItemID][]entities.ItemID,
	visited map[entities.ItemID]bool,
	onStack map[entities.ItemID]bool,
	path []entities.ItemID,
	cycles *[][]entities.ItemID,
) {
	visited[current] = true
	onStack[current] = true
	path = append(path, current)

	for _, child := range adjacency[current] {
		if !visited[child] {
			v.dfsDetectCycle(child, adjacency, visited, onStack, path, cycles)
			continue
		}
		if !onStack[child] {
			continue
		}
		for i, id := range path {
			if id == child {
				cycle := make([]entities.ItemID, 0, len(path)-i+1)
				cycle = append(cycle, path[i:]...)
				cycle = append(cycle, child)
				*cycles = append(*cycles, cycle)
				break
			}
		}
	}

	onStack[current] = false
}

// detectDuplicateLines finds lines repeating a (parent, component) pair
func (v *RecipeValidator) detectDuplicateLines(lines []entities.RecipeLine) []entities.RecipeLine {
	seen := make(map[string]entities.RecipeLine)
	duplicates := make([]entities.RecipeLine, 0)

	for _, line := range lines {
		if existing, exists := seen[line.Key()]; exists {
			duplicates = append(duplicates, existing, line)
			continue
		}
		seen[line.Key()] = line
	}

	return duplicates
}

// ValidateItemCodes reports item codes used more than once
func (v *RecipeValidator) ValidateItemCodes(items []*entities.Item) *ValidationResult {
	result := &ValidationResult{Errors: make([]string, 0)}

	seen := make(map[entities.ItemCode]bool)
	var duplicates []entities.ItemCode
	for _, item := range items {
		if seen[item.Code] {
			duplicates = append(duplicates, item.Code)
			continue
		}
		seen[item.Code] = true
	}

	if len(duplicates) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("duplicate item codes found: %v", duplicates))
	}

	return result
}
