package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScorer_Score(t *testing.T) {
	scorer := NewScorer(DefaultScoringConfig())

	tests := []struct {
		name       string
		stableName string
		realPath   string
		vid, pid   string
		want       int
	}{
		{"panel on acm", "usb-1a86_USB_Single_Serial_58FB009763-if00", "/dev/ttyACM0", "1a86", "55d3", 180},
		{"ch340 adapter", "usb-1a86_USB_Serial-if00-port0", "/dev/ttyUSB0", "1a86", "7523", -10},
		{"uppercase ids", "usb-foo", "/dev/ttyUSB1", "1A86", "55D3", 100},
		{"full by-id path", "/dev/serial/by-id/usb-1a86_USB_Single_Serial_X-if00", "/dev/ttyUSB3", "", "", 60},
		{"acm only", "usb-Other_Device-if00", "/dev/ttyACM2", "303a", "1001", 20},
		{"missing pid disables pair rules", "usb-1a86", "/dev/ttyUSB0", "1a86", "", 0},
		{"missing vid disables pair rules", "usb-1a86", "/dev/ttyUSB0", "", "7523", 0},
		{"nothing matches", "usb-FTDI_FT232R-if00-port0", "/dev/ttyUSB0", "0403", "6001", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scorer.Score(tt.stableName, tt.realPath, tt.vid, tt.pid))
		})
	}
}

func TestScorer_Deterministic(t *testing.T) {
	scorer := NewScorer(DefaultScoringConfig())
	first := scorer.Score("usb-1a86_USB_Single_Serial_58FB009763-if00", "/dev/ttyACM0", "1a86", "55d3")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, scorer.Score("usb-1a86_USB_Single_Serial_58FB009763-if00", "/dev/ttyACM0", "1a86", "55d3"))
	}
}

func TestScorer_Rules(t *testing.T) {
	rules := NewScorer(DefaultScoringConfig()).Rules()
	names := make([]string, 0, len(rules))
	for _, r := range rules {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"exact_match", "naming_hint", "interface_class", "known_bad_chipset"}, names)
}
