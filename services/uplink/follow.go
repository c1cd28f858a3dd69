package uplink

import (
	"context"
	"io"
	"time"

	"capturelink-go/bus"
	"capturelink-go/services/internal/util"
	"capturelink-go/types"
)

// Settings is the "uplink" section of the device config.
type Settings struct {
	Peer           string `json:"peer"`
	WriteTimeoutMs int    `json:"write_timeout_ms"`
}

// Dialer opens a transport for the configured peer.
type Dialer func(Settings) (Transport, error)

// DialSettings dials Settings.Peer over UDP.
func DialSettings(st Settings) (Transport, error) {
	u, err := DialUDP(st.Peer)
	if err != nil {
		return nil, err
	}
	return u.WithWriteTimeout(util.Millis(st.WriteTimeoutMs)), nil
}

// Follow rebinds the sender whenever config/uplink changes, until ctx ends.
// An empty peer detaches. A failed dial leaves the sender detached, so sends
// report not_initialized until a later config succeeds.
func (s *Sender) Follow(ctx context.Context, conn *bus.Connection, dial Dialer) {
	sub := conn.Subscribe(types.TopicConfig("uplink"))
	defer conn.Unsubscribe(sub)

	var cur Transport
	swap := func(t Transport) {
		s.Attach(t)
		if c, ok := cur.(io.Closer); ok {
			_ = c.Close()
		}
		cur = t
	}
	defer swap(nil)

	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-sub.Channel():
			if !ok {
				return
			}
			st, err := util.Overlay(m.Payload, Settings{})
			if err != nil {
				s.log.Warn().Err(err).Msg("uplink config ignored")
				continue
			}
			if st.Peer == "" {
				swap(nil)
				s.log.Info().Msg("uplink detached")
				continue
			}
			t, err := dial(st)
			if err != nil {
				swap(nil)
				s.log.Error().Err(err).Str("peer", st.Peer).Msg("uplink dial")
				continue
			}
			swap(t)
			s.log.Info().Str("peer", st.Peer).Dur("write_timeout", time.Duration(st.WriteTimeoutMs)*time.Millisecond).Msg("uplink attached")
		}
	}
}
