// Package cli handles cmd line input and decoding for DBG and testing various features
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/bastiangx/keyserve/pkg/decoder"
	"github.com/bastiangx/keyserve/pkg/keyboard"
	"github.com/bastiangx/keyserve/pkg/lexicon"
	"github.com/charmbracelet/log"
)

// InputHandler reads typed words from stdin, synthesizes touch points at
// the key centers of the typed letters, and prints the decoded suggestion
// list. It keeps one session alive so repeated inputs exercise the
// continuous-search path the way a host IME would.
type InputHandler struct {
	suggest      *decoder.Suggest
	session      *decoder.Session
	layout       *keyboard.Layout
	suggestLimit int
	requestCount int
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(sg *decoder.Suggest, lx *lexicon.Lexicon, layout *keyboard.Layout, limit int) *InputHandler {
	return &InputHandler{
		suggest:      sg,
		session:      decoder.NewSession(lx),
		layout:       layout,
		suggestLimit: limit,
	}
}

// Start begins the interface loop.
// It continuously prompts for input, reads a line from stdin,
// and passes the trimmed input to handleInput() for processing.
// Loop terminates if an error occurs while reading from stdin
func (h *InputHandler) Start() error {
	log.Print("KeyServe CLI [BETA]")
	reader := bufio.NewReader(os.Stdin)
	log.Print("type a word and press Enter to see the decoded suggestions (Ctrl+C to exit):")

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		h.handleInput(line)
	}
}

// handleInput decodes one typed word as if each letter were a tap at its
// key center.
func (h *InputHandler) handleInput(word string) {
	h.requestCount++

	points, ok := h.pointsFor(word)
	if !ok {
		log.Errorf("Input has characters outside the layout: %s", word)
		return
	}

	start := time.Now()
	suggestions := h.suggest.DecodeWords(h.session, h.layout, points, 0)
	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for input '%s'", elapsed, word)

	if len(suggestions) == 0 {
		log.Warnf("No suggestions found for input: '%s'", word)
		return
	}
	if len(suggestions) > h.suggestLimit {
		suggestions = suggestions[:h.suggestLimit]
	}

	log.Printf("Found %d suggestions for input '%s':", len(suggestions), word)
	for i, s := range suggestions {
		clWord := fmt.Sprintf("\033[38;5;75m%s\033[0m", s.Word)
		log.Printf("%2d. %-40s (score: %8d, kind: %d)", i+1, clWord, s.Score, s.Kind)
	}
}

// pointsFor synthesizes one touch point per letter, 120ms apart.
func (h *InputHandler) pointsFor(word string) ([]decoder.TouchPoint, bool) {
	var points []decoder.TouchPoint
	for i, cp := range strings.ToLower(word) {
		if !unicode.IsLetter(cp) && cp != '\'' {
			return nil, false
		}
		x, y, ok := h.layout.KeyCenter(cp)
		if !ok {
			return nil, false
		}
		points = append(points, decoder.TouchPoint{
			X:         x,
			Y:         y,
			Time:      i * 120,
			CodePoint: cp,
		})
	}
	return points, true
}
