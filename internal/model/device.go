// internal/model/device.go
package model

import (
	"database/sql/driver"
	"fmt"

	"github.com/goccy/go-json"
)

// CandidateDevice is one serial device found during an enumeration pass.
// Values are immutable once scored and are never persisted.
type CandidateDevice struct {
	StableName string `json:"stable_name" yaml:"stable_name"`
	RealPath   string `json:"real_path" yaml:"real_path"`
	VendorID   string `json:"vendor_id" yaml:"vendor_id"`
	ProductID  string `json:"product_id" yaml:"product_id"`
	Serial     string `json:"serial" yaml:"serial"`
	Product    string `json:"product" yaml:"product"`
	Vendor     string `json:"vendor" yaml:"vendor"`
	Score      int    `json:"score" yaml:"score"`
}

// VendorProduct returns "vid:pid", or "" when either half is unknown
func (d CandidateDevice) VendorProduct() string {
	return VendorProduct(d.VendorID, d.ProductID)
}

// String renders the one-line listing format used by the CLI
func (d CandidateDevice) String() string {
	return fmt.Sprintf("%s -> %s vid:pid=%s:%s score=%d serial=%s",
		d.StableName, d.RealPath, d.VendorID, d.ProductID, d.Score, d.Serial)
}

// VendorProduct joins vendor and product ids. Missing halves yield "".
func VendorProduct(vendorID, productID string) string {
	if vendorID == "" || productID == "" {
		return ""
	}
	return vendorID + ":" + productID
}

// Identity holds the attributes a metadata provider reports for a device path
type Identity struct {
	VendorID  string
	ProductID string
	Serial    string
	Product   string
	Vendor    string
}

// IsEmpty reports whether no attribute is known
func (i Identity) IsEmpty() bool {
	return i == Identity{}
}

// JSONObject type for PostgreSQL JSONB objects
type JSONObject map[string]interface{}

func (j *JSONObject) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unsupported JSONB source type %T", value)
	}
	return json.Unmarshal(bytes, j)
}

func (j JSONObject) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}
