package zip

import (
	"archive/zip"
	"bytes"
	"strings"
)

type Entry struct {
	Name string
	MIME string
	Data []byte
}

// Archive packs the entries into a zip, appending a file extension derived
// from the MIME type when the name carries none. Entries with no data are
// skipped rather than written empty; nil is returned when nothing was written.
func Archive(entries []Entry) []byte {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	written := 0
	for _, entry := range entries {
		if len(entry.Data) == 0 {
			continue
		}
		w, err := zw.Create(withExtension(entry.Name, entry.MIME))
		if err != nil {
			continue
		}
		if _, err := w.Write(entry.Data); err != nil {
			return nil
		}
		written++
	}
	_ = zw.Close()
	if written == 0 {
		return nil
	}
	return buf.Bytes()
}

func withExtension(name, mime string) string {
	if strings.Contains(name, ".") {
		return name
	}
	switch mime {
	case "image/png":
		return name + ".png"
	case "image/jpeg":
		return name + ".jpg"
	case "image/webp":
		return name + ".webp"
	default:
		return name
	}
}
