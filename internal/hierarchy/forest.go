package hierarchy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cognitionx/trackerx/internal/domain/models"
)

// Validation sentinels. Handlers map these onto inline notices; nothing here
// makes a remote call.
var (
	ErrEmptyComponentName = errors.New("component name is required")
	ErrDuplicateComponent = errors.New("duplicate component name")
	ErrSelfParent         = errors.New("component cannot be its own parent")
	ErrUnknownParent      = errors.New("parent component does not exist")
	ErrCycle              = errors.New("parent assignment would create a cycle")
	ErrMultipleMain       = errors.New("only one main component is allowed")
	ErrMainNotLeaf        = errors.New("main component must be a leaf")
)

// CheckParentAssignment decides whether row rowID may take parentName as its
// parent. It rejects self-reference and any assignment that would make the row
// its own ancestor. An empty parentName (detaching the row) is always legal.
// This runs as a validation pass before persistence, independent of the
// option lists the engine presents.
func CheckParentAssignment(order *models.TrackingOrder, rowID, parentName string) error {
	if parentName == "" {
		return nil
	}

	row := order.ComponentByID(rowID)
	if row == nil {
		return fmt.Errorf("component row %s not found", rowID)
	}
	if parentName == row.Name {
		return ErrSelfParent
	}

	byName := make(map[string]*models.Component, len(order.Components))
	for i := range order.Components {
		if order.Components[i].Name != "" {
			byName[order.Components[i].Name] = &order.Components[i]
		}
	}

	ancestor, ok := byName[parentName]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParent, parentName)
	}

	// Walk up from the proposed parent. Visited guards against pre-existing
	// cycles in data that was never validated.
	visited := map[string]bool{}
	for ancestor != nil {
		if ancestor.ID == row.ID {
			return fmt.Errorf("%w: %q is an ancestor of %q", ErrCycle, row.Name, parentName)
		}
		if visited[ancestor.ID] {
			return fmt.Errorf("%w: existing ancestry of %q already loops", ErrCycle, parentName)
		}
		visited[ancestor.ID] = true
		if ancestor.Parent == "" {
			break
		}
		ancestor = byName[ancestor.Parent]
	}

	return nil
}

// ValidateOrder checks the whole component table forms a well-formed forest
// and re-runs the bundle configuration checks. It is the gate before the
// order is handed to the backing store.
func ValidateOrder(order *models.TrackingOrder) error {
	if err := validateComponents(order); err != nil {
		return err
	}
	return validateBundles(order)
}

func validateComponents(order *models.TrackingOrder) error {
	seen := make(map[string]bool, len(order.Components))
	parents := make(map[string]bool)
	mainName := ""

	for i, row := range order.Components {
		name := strings.TrimSpace(row.Name)
		if name == "" {
			return fmt.Errorf("%w (row %d)", ErrEmptyComponentName, i+1)
		}
		if seen[name] {
			return fmt.Errorf("%w: %q (row %d)", ErrDuplicateComponent, name, i+1)
		}
		seen[name] = true

		if row.Parent != "" {
			if row.Parent == name {
				return fmt.Errorf("%w: %q (row %d)", ErrSelfParent, name, i+1)
			}
			parents[row.Parent] = true
		}

		if row.IsMain {
			if mainName != "" {
				return fmt.Errorf("%w: %q and %q", ErrMultipleMain, mainName, name)
			}
			mainName = name
		}
	}

	if mainName != "" && parents[mainName] {
		return fmt.Errorf("%w: %q has children", ErrMainNotLeaf, mainName)
	}

	for _, row := range order.Components {
		if err := CheckParentAssignment(order, row.ID, row.Parent); err != nil {
			return err
		}
	}
	return nil
}

func validateBundles(order *models.TrackingOrder) error {
	if order.ProductionType != models.ProductionBundle {
		return nil
	}

	if len(order.BundleConfigurations) == 0 {
		return errors.New("at least one bundle configuration row is required for Bundle production")
	}
	if order.Quantity <= 0 {
		return errors.New("quantity to manufacture must be a positive number")
	}

	var total float64
	for i, bc := range order.BundleConfigurations {
		if bc.BundleQuantity <= 0 {
			return fmt.Errorf("bundle quantity must be a positive number in row %d", i+1)
		}
		if bc.NumberOfBundles <= 0 {
			return fmt.Errorf("number of bundles must be a positive number in row %d", i+1)
		}
		total += bc.BundleQuantity * bc.NumberOfBundles
	}

	if total != order.Quantity {
		return fmt.Errorf("the sum of (units per bundle * number of bundles) (%g) does not match the order quantity (%g)", total, order.Quantity)
	}
	return nil
}

// NormalizeSingleUnit rewrites the bundle table for Single Unit production:
// any existing rows are dropped and a single implicit bundle covering the full
// quantity takes their place. Bundle production only stamps the production
// type down onto the rows.
func NormalizeSingleUnit(order *models.TrackingOrder) {
	if order.ProductionType == models.ProductionSingleUnit {
		size := order.SingleUnitSize
		if size == "" {
			size = "None"
		}
		order.BundleConfigurations = []models.BundleConfiguration{{
			ID:              uuid.NewString(),
			Name:            "Single Unit Bundle",
			Size:            size,
			BundleQuantity:  order.Quantity,
			NumberOfBundles: 1,
		}}
	}
	for i := range order.BundleConfigurations {
		order.BundleConfigurations[i].ProductionType = order.ProductionType
	}
}
