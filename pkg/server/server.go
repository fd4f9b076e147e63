package server

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/bastiangx/keyserve/pkg/config"
	"github.com/bastiangx/keyserve/pkg/decoder"
	"github.com/bastiangx/keyserve/pkg/keyboard"
	"github.com/bastiangx/keyserve/pkg/lexicon"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles the IPC for keyboard decoding
type Server struct {
	suggest *decoder.Suggest
	session *decoder.Session
	layout  *keyboard.Layout
	lexicon *lexicon.Lexicon
	cfg     *config.Config
	dec     *msgpack.Decoder
	enc     *msgpack.Encoder
}

// NewServer creates a decode server using stdin/stdout for IPC
func NewServer(sg *decoder.Suggest, lx *lexicon.Lexicon, layout *keyboard.Layout, cfg *config.Config) *Server {
	return &Server{
		suggest: sg,
		session: decoder.NewSession(lx),
		layout:  layout,
		lexicon: lx,
		cfg:     cfg,
		dec:     msgpack.NewDecoder(os.Stdin),
		enc:     msgpack.NewEncoder(os.Stdout),
	}
}

// NewServerWithIO is the testing constructor with explicit streams.
func NewServerWithIO(sg *decoder.Suggest, lx *lexicon.Lexicon, layout *keyboard.Layout,
	cfg *config.Config, r io.Reader, w io.Writer) *Server {
	return &Server{
		suggest: sg,
		session: decoder.NewSession(lx),
		layout:  layout,
		lexicon: lx,
		cfg:     cfg,
		dec:     msgpack.NewDecoder(r),
		enc:     msgpack.NewEncoder(w),
	}
}

// Start begins listening for IPC requests
func (s *Server) Start() error {
	log.Debug("Starting server.")

	// Signal that the server is ready
	s.send(StatusResponse{Status: "ready", Words: s.lexicon.WordCount()})

	for {
		var request DecodeRequest
		if err := s.dec.Decode(&request); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Errorf("Decoding request frame: %v", err)
			s.sendError("", "Invalid msgpack frame", 400)
			continue
		}
		s.handleRequest(&request)
	}
}

// handleRequest dispatches one decoded frame
func (s *Server) handleRequest(request *DecodeRequest) {
	switch request.Cmd {
	case "", "decode":
		s.handleDecode(request)
	case "health":
		s.send(StatusResponse{ID: request.ID, Status: "ok", Words: s.lexicon.WordCount()})
	default:
		s.sendError(request.ID, "Unknown command: "+request.Cmd, 400)
	}
}

// handleDecode runs one beam search over the request points.
func (s *Server) handleDecode(request *DecodeRequest) {
	if len(request.Points) == 0 {
		s.sendError(request.ID, "Missing 'pts' parameter", 400)
		log.Debug("Points are empty in request")
		return
	}
	if len(request.Points) > s.cfg.Server.MaxInputSize {
		s.sendError(request.ID, "Input exceeds maximum size", 400)
		log.Debugf("Input of %d points exceeds max %d", len(request.Points), s.cfg.Server.MaxInputSize)
		return
	}

	limit := request.Limit
	if limit < 1 || limit > s.cfg.Server.MaxLimit {
		limit = s.cfg.Server.MaxLimit
	}

	if request.PrevWord != "" {
		s.session.SetPrevWord(request.PrevWord)
	}

	points := make([]decoder.TouchPoint, len(request.Points))
	for i, p := range request.Points {
		points[i] = decoder.TouchPoint{
			X:         p.X,
			Y:         p.Y,
			Time:      p.Time,
			PointerID: p.PointerID,
			CodePoint: rune(p.CodePoint),
		}
	}

	start := time.Now()
	suggestions := s.suggest.DecodeWords(s.session, s.layout, points, request.CommitPoint)
	elapsed := time.Since(start)

	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}

	response := DecodeResponse{
		ID:          request.ID,
		Suggestions: make([]DecodeSuggestion, len(suggestions)),
		Count:       len(suggestions),
		TimeTaken:   elapsed.Microseconds(),
	}
	for i, sug := range suggestions {
		response.Suggestions[i] = DecodeSuggestion{Word: sug.Word, Score: sug.Score, Kind: sug.Kind}
	}
	s.send(response)
}

// send marshals one response frame to the client.
func (s *Server) send(response interface{}) {
	if err := s.enc.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
	}
}

// sendError sends an error frame
func (s *Server) sendError(id, message string, code int) {
	s.send(DecodeError{ID: id, Error: message, Code: code})
}
