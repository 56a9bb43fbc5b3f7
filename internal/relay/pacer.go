package relay

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/antoniostano/voicebridge/internal/codec"
	"github.com/antoniostano/voicebridge/internal/protocol"
)

// sendPaced slices encoded audio into fixed-size frames and emits them on
// the outbound channel at real-time cadence, one frame per interval. The
// final short frame is padded with mu-law silence. Emission stops as soon
// as ctx is cancelled; no frames are sent after that.
func sendPaced(ctx context.Context, streamSID string, audio []byte, outbound chan<- any, frameBytes int, interval time.Duration) (int, error) {
	if frameBytes <= 0 || len(audio) == 0 {
		return 0, nil
	}

	sent := 0
	for off := 0; off < len(audio); off += frameBytes {
		end := off + frameBytes
		frame := make([]byte, frameBytes)
		if end > len(audio) {
			n := copy(frame, audio[off:])
			for i := n; i < frameBytes; i++ {
				frame[i] = codec.SilenceByte
			}
		} else {
			copy(frame, audio[off:end])
		}

		msg := protocol.OutboundMedia(streamSID, base64.StdEncoding.EncodeToString(frame))
		select {
		case <-ctx.Done():
			return sent, ctx.Err()
		case outbound <- msg:
			sent++
		}

		if end >= len(audio) {
			break
		}
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return sent, ctx.Err()
		case <-timer.C:
		}
	}
	return sent, nil
}
