package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/pion/logging"
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
	"gopkg.in/hraban/opus.v2"
)

const opusBitrate = 32000

// SampleRate is the rate the streamed tone is rendered at. The Opus RTP
// clock is always 48 kHz.
const SampleRate = 48000

// ErrUnsupportedRate is returned for sample rates Opus cannot encode.
var ErrUnsupportedRate = errors.New("stream: sample rate not supported by opus")

// OpusRate reports whether rate can be encoded as Opus.
func OpusRate(rate int) bool {
	switch rate {
	case 8000, 12000, 16000, 24000, 48000:
		return true
	}
	return false
}

// WebRTCHandler serves SDP negotiation and streams the feedback tone to
// each peer as Opus.
type WebRTCHandler struct {
	broadcaster *Broadcaster
	sampleRate  int
	api         *webrtc.API
	log         logging.LeveledLogger

	mu    sync.Mutex
	peers []*webrtc.PeerConnection
}

// NewWebRTCHandler creates a handler whose peers share the factory's
// logging configuration. Frames from b must be at sampleRate, which must
// satisfy OpusRate.
func NewWebRTCHandler(b *Broadcaster, sampleRate int, factory logging.LoggerFactory) (*WebRTCHandler, error) {
	if !OpusRate(sampleRate) {
		return nil, fmt.Errorf("%w: %d Hz", ErrUnsupportedRate, sampleRate)
	}

	m := &webrtc.MediaEngine{}
	if err := m.RegisterDefaultCodecs(); err != nil {
		return nil, err
	}

	se := webrtc.SettingEngine{LoggerFactory: factory}

	return &WebRTCHandler{
		broadcaster: b,
		sampleRate:  sampleRate,
		api:         webrtc.NewAPI(webrtc.WithMediaEngine(m), webrtc.WithSettingEngine(se)),
		log:         factory.NewLogger("stream"),
	}, nil
}

// PeerCount returns the number of active WebRTC peers.
func (h *WebRTCHandler) PeerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

// Close tears down every peer.
func (h *WebRTCHandler) Close() error {
	h.mu.Lock()
	peers := h.peers
	h.peers = nil
	h.mu.Unlock()

	var first error
	for _, pc := range peers {
		if err := pc.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (h *WebRTCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var offer webrtc.SessionDescription
	if err := json.NewDecoder(r.Body).Decode(&offer); err != nil || offer.SDP == "" {
		http.Error(w, "invalid SDP offer", http.StatusBadRequest)
		return
	}

	pc, err := h.api.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		http.Error(w, "create peer connection failed", http.StatusInternalServerError)
		return
	}

	track, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: SampleRate, Channels: 1},
		"audio",
		"neurofeedback",
	)
	if err != nil {
		_ = pc.Close()
		http.Error(w, "create audio track failed", http.StatusInternalServerError)
		return
	}

	if _, err := pc.AddTrack(track); err != nil {
		_ = pc.Close()
		http.Error(w, "add track failed", http.StatusInternalServerError)
		return
	}

	if err := pc.SetRemoteDescription(offer); err != nil {
		_ = pc.Close()
		http.Error(w, "set remote description failed", http.StatusBadRequest)
		return
	}

	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		_ = pc.Close()
		http.Error(w, "create answer failed", http.StatusInternalServerError)
		return
	}

	gatherComplete := webrtc.GatheringCompletePromise(pc)
	if err := pc.SetLocalDescription(answer); err != nil {
		_ = pc.Close()
		http.Error(w, "set local description failed", http.StatusInternalServerError)
		return
	}
	<-gatherComplete

	h.mu.Lock()
	h.peers = append(h.peers, pc)
	h.mu.Unlock()
	h.log.Infof("peer connected (total: %d)", h.PeerCount())

	done := make(chan struct{})
	var once sync.Once
	go h.streamToPeer(track, done)

	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		if s == webrtc.PeerConnectionStateFailed ||
			s == webrtc.PeerConnectionStateClosed ||
			s == webrtc.PeerConnectionStateDisconnected {
			once.Do(func() { close(done) })
			if h.removePeer(pc) {
				_ = pc.Close()
				h.log.Infof("peer disconnected (remaining: %d)", h.PeerCount())
			}
		}
	})

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_ = json.NewEncoder(w).Encode(pc.LocalDescription())
}

func (h *WebRTCHandler) streamToPeer(track *webrtc.TrackLocalStaticSample, done <-chan struct{}) {
	listener := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(listener)

	enc, err := opus.NewEncoder(h.sampleRate, 1, opus.AppAudio)
	if err != nil {
		h.log.Errorf("opus encoder: %v", err)
		return
	}
	if err := enc.SetBitrate(opusBitrate); err != nil {
		h.log.Warnf("opus bitrate: %v", err)
	}

	buf := make([]byte, 4000)
	for {
		select {
		case <-done:
			return
		case <-listener.Done():
			return
		case frame := <-listener.C:
			n, err := enc.Encode(frame, buf)
			if err != nil {
				h.log.Warnf("opus encode: %v", err)
				continue
			}
			if err := track.WriteSample(media.Sample{Data: buf[:n], Duration: FrameDuration}); err != nil {
				h.log.Debugf("track write: %v", err)
				return
			}
		}
	}
}

func (h *WebRTCHandler) removePeer(pc *webrtc.PeerConnection) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, p := range h.peers {
		if p == pc {
			h.peers = append(h.peers[:i], h.peers[i+1:]...)
			return true
		}
	}
	return false
}
