package bwav

import (
	"fmt"
	"strings"
)

// ChannelMask is a WAVEFORMATEXTENSIBLE speaker position bit.
type ChannelMask uint32

const (
	DirectOut          ChannelMask = 0
	FrontLeft          ChannelMask = 0x1
	FrontRight         ChannelMask = 0x2
	FrontCenter        ChannelMask = 0x4
	LowFrequency       ChannelMask = 0x8
	BackLeft           ChannelMask = 0x10
	BackRight          ChannelMask = 0x20
	FrontLeftOfCenter  ChannelMask = 0x40
	FrontRightOfCenter ChannelMask = 0x80
	BackCenter         ChannelMask = 0x100
	SideLeft           ChannelMask = 0x200
	SideRight          ChannelMask = 0x400
	TopCenter          ChannelMask = 0x800
	TopFrontLeft       ChannelMask = 0x1000
	TopFrontCenter     ChannelMask = 0x2000
	TopFrontRight      ChannelMask = 0x4000
	TopBackLeft        ChannelMask = 0x8000
	TopBackCenter      ChannelMask = 0x10000
	TopBackRight       ChannelMask = 0x20000
)

// reservedChannelBits are the mask bits past TopBackRight.
const reservedChannelBits uint32 = 0xFFFC0000

const speakerBitCount = 18

var channelNames = map[ChannelMask]string{
	DirectOut:          "DirectOut",
	FrontLeft:          "FrontLeft",
	FrontRight:         "FrontRight",
	FrontCenter:        "FrontCenter",
	LowFrequency:       "LowFrequency",
	BackLeft:           "BackLeft",
	BackRight:          "BackRight",
	FrontLeftOfCenter:  "FrontLeftOfCenter",
	FrontRightOfCenter: "FrontRightOfCenter",
	BackCenter:         "BackCenter",
	SideLeft:           "SideLeft",
	SideRight:          "SideRight",
	TopCenter:          "TopCenter",
	TopFrontLeft:       "TopFrontLeft",
	TopFrontCenter:     "TopFrontCenter",
	TopFrontRight:      "TopFrontRight",
	TopBackLeft:        "TopBackLeft",
	TopBackCenter:      "TopBackCenter",
	TopBackRight:       "TopBackRight",
}

func (m ChannelMask) String() string {
	if name, ok := channelNames[m]; ok {
		return name
	}

	var parts []string

	for bit := range speakerBitCount {
		if speaker := ChannelMask(1 << bit); m&speaker != 0 {
			parts = append(parts, channelNames[speaker])
		}
	}

	if rest := uint32(m) & reservedChannelBits; rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%08x", rest))
	}

	return strings.Join(parts, "|")
}

// ChannelMasks splits mask into one speaker per channel, lowest bit first.
// Channels beyond the set bits are DirectOut, and a mask using any reserved
// bit yields DirectOut for every channel.
func ChannelMasks(mask uint32, count int) []ChannelMask {
	out := make([]ChannelMask, count)

	if mask&reservedChannelBits != 0 {
		return out
	}

	i := 0

	for bit := 0; bit < speakerBitCount && i < count; bit++ {
		if speaker := ChannelMask(1 << bit); mask&uint32(speaker) != 0 {
			out[i] = speaker
			i++
		}
	}

	return out
}

// ChannelMaskOf combines speakers into a channel mask.
func ChannelMaskOf(speakers ...ChannelMask) uint32 {
	var mask uint32
	for _, s := range speakers {
		mask |= uint32(s)
	}

	return mask
}

// ADMAudioID is one chna entry binding a track to ADM metadata.
type ADMAudioID struct {
	TrackUID         string
	ChannelFormatRef string
	PackRef          string
}

// ChannelDescriptor describes one channel of a file.
type ChannelDescriptor struct {
	Index       uint16
	Speaker     ChannelMask
	ADMAudioIDs []ADMAudioID
}
