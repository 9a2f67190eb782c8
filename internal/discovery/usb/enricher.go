// internal/discovery/usb/enricher.go
package usb

import (
	"context"
	"strings"

	"panel-link/internal/discovery"
	"panel-link/internal/model"

	"github.com/google/gousb"
	"go.uber.org/zap"
)

// Descriptors are the string descriptors read from a USB device
type Descriptors struct {
	Manufacturer string
	Product      string
	Serial       string
}

// DescriptorReader reads string descriptors of every attached device matching vid:pid
type DescriptorReader func(vendorID, productID gousb.ID) ([]Descriptors, error)

// Enricher wraps a metadata provider and fills empty vendor, product and
// serial strings from USB descriptors and the chipset database.
type Enricher struct {
	next   discovery.MetadataProvider
	read   DescriptorReader
	db     *ChipsetDatabase
	logger *zap.Logger
}

// NewEnricher creates an enricher around next. A nil reader uses libusb.
func NewEnricher(next discovery.MetadataProvider, read DescriptorReader, logger *zap.Logger) *Enricher {
	if read == nil {
		read = ReadDescriptors
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{
		next:   next,
		read:   read,
		db:     NewChipsetDatabase(),
		logger: logger.With(zap.String("component", "usb_enricher")),
	}
}

// Identify asks the wrapped provider first and only touches USB when strings are missing
func (e *Enricher) Identify(ctx context.Context, realPath string) (model.Identity, error) {
	identity, err := e.next.Identify(ctx, realPath)
	if err != nil {
		return identity, err
	}
	if identity.VendorID == "" || identity.ProductID == "" {
		return identity, nil
	}
	if identity.Vendor != "" && identity.Product != "" && identity.Serial != "" {
		return identity, nil
	}

	vid, err := ParseID(identity.VendorID)
	if err != nil {
		e.logger.Debug("Unparseable vendor id", zap.String("device", realPath), zap.Error(err))
		return identity, nil
	}
	pid, err := ParseID(identity.ProductID)
	if err != nil {
		e.logger.Debug("Unparseable product id", zap.String("device", realPath), zap.Error(err))
		return identity, nil
	}

	descs, err := e.read(vid, pid)
	if err != nil {
		e.logger.Debug("Failed to read USB descriptors",
			zap.String("device", realPath),
			zap.String("vid_pid", identity.VendorID+":"+identity.ProductID),
			zap.Error(err),
		)
	}

	desc := mergeDescriptors(descs)

	vendorName, productName := e.db.Lookup(vid, pid)
	identity.Vendor = firstNonEmpty(identity.Vendor, desc.Manufacturer, vendorName)
	identity.Product = firstNonEmpty(identity.Product, desc.Product, productName)
	identity.Serial = firstNonEmpty(identity.Serial, desc.Serial)
	return identity, nil
}

// ReadDescriptors opens every device with vendorID:productID through libusb
// and reads its strings
func ReadDescriptors(vendorID, productID gousb.ID) ([]Descriptors, error) {
	usbCtx := gousb.NewContext()
	defer usbCtx.Close()

	devs, err := usbCtx.OpenDevices(func(d *gousb.DeviceDesc) bool {
		return d.Vendor == vendorID && d.Product == productID
	})
	defer func() {
		for _, dev := range devs {
			dev.Close()
		}
	}()
	if len(devs) == 0 {
		if err != nil {
			return nil, err
		}
		return nil, discovery.ErrMetadataUnavailable
	}

	descs := make([]Descriptors, 0, len(devs))
	for _, dev := range devs {
		var desc Descriptors
		if s, err := dev.Manufacturer(); err == nil {
			desc.Manufacturer = strings.TrimSpace(s)
		}
		if s, err := dev.Product(); err == nil {
			desc.Product = strings.TrimSpace(s)
		}
		if s, err := dev.SerialNumber(); err == nil {
			desc.Serial = strings.TrimSpace(s)
		}
		descs = append(descs, desc)
	}
	return descs, nil
}

// mergeDescriptors reduces the devices sharing one vid:pid to the strings
// that are safe to attribute to any of them. A serial is only taken when
// exactly one device matched; shared strings must agree across devices.
func mergeDescriptors(descs []Descriptors) Descriptors {
	if len(descs) == 0 {
		return Descriptors{}
	}
	if len(descs) == 1 {
		return descs[0]
	}

	merged := Descriptors{Manufacturer: descs[0].Manufacturer, Product: descs[0].Product}
	for _, d := range descs[1:] {
		if d.Manufacturer != merged.Manufacturer {
			merged.Manufacturer = ""
		}
		if d.Product != merged.Product {
			merged.Product = ""
		}
	}
	return merged
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
