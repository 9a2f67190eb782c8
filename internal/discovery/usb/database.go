// 📁 internal/discovery/usb/database.go - Known USB serial chipsets
package usb

import (
	"fmt"
	"strconv"

	"github.com/google/gousb"
)

// ChipsetDatabase names the USB serial bridges the panel is found behind
type ChipsetDatabase struct {
	vendors map[gousb.ID]*VendorInfo
}

// VendorInfo contains vendor-specific information
type VendorInfo struct {
	Name     string
	products map[gousb.ID]*ProductInfo
}

// ProductInfo describes one bridge chip
type ProductInfo struct {
	Name string
	// Native is true for chips exposing a CDC-ACM interface
	Native bool
}

// NewChipsetDatabase creates and initializes the database
func NewChipsetDatabase() *ChipsetDatabase {
	db := &ChipsetDatabase{
		vendors: make(map[gousb.ID]*VendorInfo),
	}
	db.initialize()
	return db
}

func (db *ChipsetDatabase) initialize() {
	// QinHeng (0x1A86)
	db.AddVendor(0x1A86, &VendorInfo{Name: "QinHeng Electronics"})
	db.AddProduct(0x1A86, 0x55D3, &ProductInfo{Name: "USB Single Serial (CH343)", Native: true})
	db.AddProduct(0x1A86, 0x7523, &ProductInfo{Name: "CH340 serial converter"})
	db.AddProduct(0x1A86, 0x55D4, &ProductInfo{Name: "USB Single Serial (CH9102)", Native: true})

	// Espressif (0x303A)
	db.AddVendor(0x303A, &VendorInfo{Name: "Espressif"})
	db.AddProduct(0x303A, 0x1001, &ProductInfo{Name: "USB JTAG/serial debug unit", Native: true})

	// Silicon Labs (0x10C4)
	db.AddVendor(0x10C4, &VendorInfo{Name: "Silicon Labs"})
	db.AddProduct(0x10C4, 0xEA60, &ProductInfo{Name: "CP210x UART Bridge"})

	// FTDI (0x0403)
	db.AddVendor(0x0403, &VendorInfo{Name: "Future Technology Devices International"})
	db.AddProduct(0x0403, 0x6001, &ProductInfo{Name: "FT232 Serial (UART) IC"})
}

// Lookup returns vendor and product names for a pair; either may be ""
func (db *ChipsetDatabase) Lookup(vendorID, productID gousb.ID) (vendor, product string) {
	vi := db.GetVendorInfo(vendorID)
	if vi == nil {
		return "", ""
	}
	if pi := vi.GetProductInfo(productID); pi != nil {
		return vi.Name, pi.Name
	}
	return vi.Name, ""
}

// GetVendorInfo returns vendor information
func (db *ChipsetDatabase) GetVendorInfo(vendorID gousb.ID) *VendorInfo {
	return db.vendors[vendorID]
}

// GetProductInfo returns product information
func (vi *VendorInfo) GetProductInfo(productID gousb.ID) *ProductInfo {
	return vi.products[productID]
}

// AddVendor adds or replaces a vendor
func (db *ChipsetDatabase) AddVendor(vendorID gousb.ID, info *VendorInfo) {
	if info.products == nil {
		info.products = make(map[gousb.ID]*ProductInfo)
	}
	db.vendors[vendorID] = info
}

// AddProduct adds a product to an existing vendor
func (db *ChipsetDatabase) AddProduct(vendorID, productID gousb.ID, info *ProductInfo) {
	if vendor, ok := db.vendors[vendorID]; ok {
		vendor.products[productID] = info
	}
}

// ParseID parses a four digit hex id such as "1a86"
func ParseID(s string) (gousb.ID, error) {
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid USB id %q: %w", s, err)
	}
	return gousb.ID(v), nil
}
