package lexicon

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// LoadWordList reads "word<TAB>frequency" lines into the lexicon. Lines
// without a frequency column get probability 1; malformed lines are skipped
// with a debug log. Returns the number of words added.
func (lx *Lexicon) LoadWordList(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	count := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		word := fields[0]
		probability := 1
		if len(fields) > 1 {
			p, err := strconv.Atoi(fields[1])
			if err != nil {
				log.Debugf("Skipping line %d: bad frequency %q", lineNo, fields[1])
				continue
			}
			probability = p
		}
		lx.AddWord(strings.ToLower(word), probability)
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("reading word list: %w", err)
	}
	return count, nil
}
