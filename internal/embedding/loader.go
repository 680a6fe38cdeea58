package embedding

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

const (
	FormatAuto   = "auto"
	FormatText   = "text"
	FormatBinary = "binary"

	progressEvery = 500_000
)

// LoadFile reads a word2vec table from path. ".gz" files are decompressed on
// the fly. FormatAuto selects the binary reader for ".bin" and ".bin.gz".
func LoadFile(path, format string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open embeddings: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	name := path
	if strings.HasSuffix(name, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip embeddings: %w", err)
		}
		defer gz.Close()
		r = gz
		name = strings.TrimSuffix(name, ".gz")
	}

	if format == "" || format == FormatAuto {
		format = FormatText
		if strings.HasSuffix(name, ".bin") {
			format = FormatBinary
		}
	}

	log.Printf("Loading %s embeddings from %s", format, path)
	var table *Table
	switch format {
	case FormatText:
		table, err = LoadText(r)
	case FormatBinary:
		table, err = LoadBinary(r)
	default:
		return nil, fmt.Errorf("unsupported embeddings format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("load embeddings %s: %w", path, err)
	}
	log.Printf("Loaded %d embeddings (dim %d)", table.Len(), table.Dim())
	return table, nil
}

// LoadText parses the word2vec text format: an optional "<count> <dim>"
// header followed by one "<word> <v1> ... <vD>" line per token.
func LoadText(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	dim := 0
	count := -1
	rows := 0
	vectors := make(map[string][]float32)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if lineNo == 1 && len(fields) == 2 {
			c, errCount := strconv.Atoi(fields[0])
			d, errDim := strconv.Atoi(fields[1])
			if errCount == nil && errDim == nil {
				if c <= 0 || d <= 0 {
					return nil, fmt.Errorf("malformed header %q", scanner.Text())
				}
				count, dim = c, d
				vectors = make(map[string][]float32, count)
				continue
			}
		}
		if dim == 0 {
			dim = len(fields) - 1
		}
		if len(fields)-1 != dim {
			return nil, fmt.Errorf("line %d: got %d values, want %d", lineNo, len(fields)-1, dim)
		}
		vec := make([]float32, dim)
		for i, raw := range fields[1:] {
			v, err := strconv.ParseFloat(raw, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			vec[i] = float32(v)
		}
		vectors[fields[0]] = vec
		rows++
		if rows%progressEvery == 0 {
			log.Printf("Loaded %d embeddings...", rows)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if count >= 0 && rows != count {
		return nil, fmt.Errorf("header declares %d entries, read %d", count, rows)
	}
	if rows == 0 {
		return nil, errors.New("empty embeddings table")
	}
	return NewTable(dim, vectors)
}

// LoadBinary parses the word2vec C binary format: a "<count> <dim>\n" header,
// then for every entry the word, a single space and dim little-endian float32
// values, optionally followed by a newline.
func LoadBinary(r io.Reader) (*Table, error) {
	br := bufio.NewReaderSize(r, 1<<20)

	header, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	fields := strings.Fields(header)
	if len(fields) != 2 {
		return nil, fmt.Errorf("malformed header %q", strings.TrimSpace(header))
	}
	count, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("malformed header count: %w", err)
	}
	if count <= 0 {
		return nil, fmt.Errorf("malformed header count %d", count)
	}
	dim, err := strconv.Atoi(fields[1])
	if err != nil || dim <= 0 {
		return nil, fmt.Errorf("malformed header dimension %q", fields[1])
	}

	vectors := make(map[string][]float32, count)
	buf := make([]byte, dim*4)
	for i := 0; i < count; i++ {
		word, err := br.ReadString(' ')
		if err != nil {
			return nil, fmt.Errorf("entry %d: read word: %w", i, err)
		}
		word = strings.TrimLeft(word[:len(word)-1], "\n")
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, fmt.Errorf("entry %d (%q): read vector: %w", i, word, err)
		}
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[j*4:]))
		}
		vectors[word] = vec
		if (i+1)%progressEvery == 0 {
			log.Printf("Loaded %d/%d embeddings...", i+1, count)
		}
	}
	return NewTable(dim, vectors)
}
