package model

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVendorProduct(t *testing.T) {
	assert.Equal(t, "1a86:55d3", VendorProduct("1a86", "55d3"))
	assert.Equal(t, "", VendorProduct("", "55d3"))
	assert.Equal(t, "", VendorProduct("1a86", ""))
	assert.Equal(t, "", CandidateDevice{}.VendorProduct())
}

func TestCandidateDevice_String(t *testing.T) {
	d := CandidateDevice{
		StableName: "usb-1a86_USB_Single_Serial_58FB009763-if00",
		RealPath:   "/dev/ttyACM0",
		VendorID:   "1a86",
		ProductID:  "55d3",
		Serial:     "58FB009763",
		Score:      180,
	}
	assert.Equal(t,
		"usb-1a86_USB_Single_Serial_58FB009763-if00 -> /dev/ttyACM0 vid:pid=1a86:55d3 score=180 serial=58FB009763",
		d.String())
}

func TestReceiver_FrequencyMHz(t *testing.T) {
	r := Receiver{FrequencyHz: 5740000000}
	assert.True(t, r.FrequencyMHz().Equal(decimal.NewFromInt(5740)))

	r = Receiver{FrequencyHz: 5732500000}
	assert.Equal(t, "5732.5", r.FrequencyMHz().String())
}

func TestVideoSelect(t *testing.T) {
	cmd, err := VideoSelect("20", 2)
	require.NoError(t, err)
	assert.Equal(t, "20", cmd.ID)
	assert.Equal(t, CmdVideoSelect, cmd.Cmd)
	assert.Equal(t, 2, cmd.Args["ch"])

	for _, ch := range []int{0, 4, -1} {
		_, err := VideoSelect("20", ch)
		assert.True(t, errors.Is(err, ErrInvalidArgument), "channel %d", ch)
	}
}

func TestNewCommand_GeneratesID(t *testing.T) {
	a := TestBeep("")
	b := TestBeep("")
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotNil(t, a.Args)
	assert.Empty(t, a.Args)
}

func TestCommandBuilders(t *testing.T) {
	hold := HoldSet("1", true)
	assert.Equal(t, 1, hold.Args["hold"])

	mute := MuteSet("2", false)
	assert.Equal(t, 0, mute.Args["mute"])

	leds := SetLEDs("3", false, true, false)
	assert.Equal(t, map[string]interface{}{"r": 0, "y": 1, "g": 0}, leds.Args)

	tune, err := TuneFrequency("4", 3, 5800)
	require.NoError(t, err)
	assert.Equal(t, 3, tune.Args["vrx_id"])
	assert.Equal(t, 5800, tune.Args["freq_mhz"])

	_, err = TuneFrequency("4", 4, 5800)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = TuneFrequency("4", 1, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = TuneIndex("5", 1, -1)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	profile, err := SetThresholdProfile("6", "Balanced")
	require.NoError(t, err)
	assert.Equal(t, "Balanced", profile.Args["threshold"])
	_, err = SetThresholdProfile("6", "Paranoid")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = SetBandProfile("7", "2.4G")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBuildCommand(t *testing.T) {
	tune, err := BuildCommand("1", CmdTuneFreq, map[string]interface{}{"vrx_id": float64(2), "freq_mhz": float64(5740)})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"vrx_id": 2, "freq_mhz": 5740}, tune.Args)

	leds, err := BuildCommand("2", CmdSetLEDs, map[string]interface{}{"r": true, "y": float64(0), "g": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"r": 1, "y": 0, "g": 1}, leds.Args)

	band, err := BuildCommand("3", CmdSetBandProfile, map[string]interface{}{"band": "1.2G"})
	require.NoError(t, err)
	assert.Equal(t, "1.2G", band.Args["band"])

	beep, err := BuildCommand("", CmdTestBeep, map[string]interface{}{"ignored": 1})
	require.NoError(t, err)
	assert.NotEmpty(t, beep.ID)
	assert.Empty(t, beep.Args)

	custom, err := BuildCommand("4", "FACTORY_RESET", map[string]interface{}{"confirm": "yes"})
	require.NoError(t, err)
	assert.Equal(t, "FACTORY_RESET", custom.Cmd)
	assert.Equal(t, "yes", custom.Args["confirm"])

	// Rebuilding a built envelope is stable
	again, err := BuildCommand(leds.ID, leds.Cmd, leds.Args)
	require.NoError(t, err)
	assert.Equal(t, leds, again)
}

func TestBuildCommand_Rejects(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		args map[string]interface{}
	}{
		{"empty name", "", nil},
		{"receiver out of range", CmdTuneFreq, map[string]interface{}{"vrx_id": 7, "freq_mhz": 5800}},
		{"missing frequency", CmdTuneFreq, map[string]interface{}{"vrx_id": 1}},
		{"fractional channel", CmdVideoSelect, map[string]interface{}{"ch": 1.5}},
		{"channel as string", CmdVideoSelect, map[string]interface{}{"ch": "2"}},
		{"negative index", CmdTuneIndex, map[string]interface{}{"vrx_id": 1, "idx": -1}},
		{"hold out of domain", CmdHoldSet, map[string]interface{}{"hold": 2}},
		{"missing mute", CmdMuteSet, nil},
		{"missing led", CmdSetLEDs, map[string]interface{}{"r": 1, "y": 0}},
		{"unknown threshold", CmdSetThresholdProfile, map[string]interface{}{"threshold": "Paranoid"}},
		{"band not string", CmdSetBandProfile, map[string]interface{}{"band": 58}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildCommand("1", tt.cmd, tt.args)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestNewCommandRecord(t *testing.T) {
	cmd := ScanStart("9")

	ok := NewCommandRecord(cmd, "/dev/ttyACM0", nil)
	assert.Equal(t, CommandStatusSent, ok.Status)
	assert.Nil(t, ok.ErrorMessage)
	assert.Equal(t, "9", ok.CommandID)

	failed := NewCommandRecord(cmd, "/dev/ttyACM0", errors.New("write failed"))
	assert.Equal(t, CommandStatusFailed, failed.Status)
	require.NotNil(t, failed.ErrorMessage)
	assert.Equal(t, "write failed", *failed.ErrorMessage)
}

func TestJSONObject_ScanValue(t *testing.T) {
	var obj JSONObject
	require.NoError(t, obj.Scan([]byte(`{"ch":2}`)))
	assert.Equal(t, float64(2), obj["ch"])

	v, err := JSONObject(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), v)

	assert.Error(t, obj.Scan(42))
}
