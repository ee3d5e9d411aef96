package stream

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteNDJSON drains fs to w, one JSON object per line, flushing after each
// frame so the client sees tokens as they arrive. The stream is closed on
// return, which cancels generation if the write side failed first.
func WriteNDJSON(w io.Writer, flush func() error, fs *FrameStream) error {
	defer fs.Close()

	for fs.Next() {
		raw, err := json.Marshal(fs.Frame())
		if err != nil {
			return fmt.Errorf("encode frame: %w", err)
		}
		raw = append(raw, '\n')
		if _, err := w.Write(raw); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
		if flush != nil {
			if err := flush(); err != nil {
				return fmt.Errorf("flush frame: %w", err)
			}
		}
	}
	return nil
}
