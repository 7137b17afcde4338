package models

import "github.com/google/uuid"

// ProductionType determines how a tracking order is broken down for the floor.
type ProductionType string

const (
	ProductionBundle     ProductionType = "Bundle"
	ProductionSingleUnit ProductionType = "Single Unit"
)

// ReferenceOrderType enumerates the upstream documents a tracking order can point at.
type ReferenceOrderType string

const (
	ReferenceSalesOrder ReferenceOrderType = "Sales Order"
	ReferenceWorkOrder  ReferenceOrderType = "Work Order"
	ReferenceCutOrder   ReferenceOrderType = "Cut Order"
)

// Component is one row of a tracking order's component table. ID is the stable
// row key; Name is the operator-facing label used for parent references.
type Component struct {
	ID     string `json:"id"`
	Name   string `json:"component_name"`
	Parent string `json:"parent_component,omitempty"`
	IsMain bool   `json:"is_main"`
}

// NewComponent creates a component row with a fresh identity.
func NewComponent(name string) Component {
	return Component{ID: uuid.NewString(), Name: name}
}

// OperationMapEntry binds a manufacturing operation to a component by name.
type OperationMapEntry struct {
	ID        string `json:"id"`
	Operation string `json:"operation"`
	Component string `json:"component,omitempty"`
}

// BundleConfiguration describes one bundle size within a Bundle-type order.
type BundleConfiguration struct {
	ID              string         `json:"id"`
	Name            string         `json:"bc_name"`
	Size            string         `json:"size"`
	BundleQuantity  float64        `json:"bundle_quantity"`
	NumberOfBundles float64        `json:"number_of_bundles"`
	ProductionType  ProductionType `json:"production_type"`
}

// TrackingOrder is the in-memory editing state of one order document. The
// backing store owns persistence; this struct only carries what the hierarchy
// engine and validations need.
type TrackingOrder struct {
	Name                 string                `json:"name"`
	Quantity             float64               `json:"quantity"`
	ProductionType       ProductionType        `json:"production_type"`
	ReferenceOrderType   ReferenceOrderType    `json:"reference_order_type"`
	ReferenceOrderNumber string                `json:"reference_order_number"`
	SingleUnitSize       string                `json:"single_unit_size,omitempty"`
	Components           []Component           `json:"tracking_components"`
	OperationMap         []OperationMapEntry   `json:"operation_map"`
	BundleConfigurations []BundleConfiguration `json:"bundle_configurations"`
}

// ComponentByID returns a pointer into the order's component slice, or nil.
func (o *TrackingOrder) ComponentByID(id string) *Component {
	for i := range o.Components {
		if o.Components[i].ID == id {
			return &o.Components[i]
		}
	}
	return nil
}
