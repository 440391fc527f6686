package pixels

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownChannel is returned for a channel name outside red, green,
// blue and alpha.
var ErrUnknownChannel = errors.New("unknown channel")

// Channel selects one byte plane of an RGBA pixel.
//
// The value is the byte offset of the channel within a pixel tuple.
type Channel int

const (
	Red   Channel = 0
	Green Channel = 1
	Blue  Channel = 2
	Alpha Channel = 3
)

var channelNames = [...]string{"red", "green", "blue", "alpha"}

// Channels lists every channel in tuple order.
var Channels = []Channel{Red, Green, Blue, Alpha}

// ParseChannel maps a channel name to its Channel. Matching ignores case.
func ParseChannel(name string) (Channel, error) {
	for i, n := range channelNames {
		if strings.EqualFold(name, n) {
			return Channel(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownChannel, name)
}

// Valid reports whether c is one of the four channels.
func (c Channel) Valid() bool {
	return c >= Red && c <= Alpha
}

// Offset returns the byte offset of c within a pixel tuple.
func (c Channel) Offset() int {
	return int(c)
}

func (c Channel) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Channel(%d)", int(c))
	}
	return channelNames[c]
}
