// Package devtools reads recorded DevTools protocol traffic and rebuilds the
// remote objects it carries.
package devtools

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	cdpruntime "github.com/chromedp/cdproto/runtime"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"

	"unmirror-go/devtools/capture"
	"unmirror-go/devtools/mirror"
)

const maxLineBytes = 64 << 20

// ErrUnsupportedMessage marks protocol messages that carry no remote
// objects this package knows how to extract.
var ErrUnsupportedMessage = xerrors.New("unsupported protocol message")

// Record is the set of values one protocol message carried.
type Record struct {
	Path   string
	Line   int
	Method string
	Kind   string
	Values []mirror.Value
}

// JSONRecord is the encodable form of a Record.
type JSONRecord struct {
	Path   string `json:"path" msgpack:"path"`
	Line   int    `json:"line" msgpack:"line"`
	Method string `json:"method,omitempty" msgpack:"method,omitempty"`
	Kind   string `json:"kind" msgpack:"kind"`
	Values []any  `json:"values" msgpack:"values"`
}

// ToJSONRecord exports the values of rec.
func ToJSONRecord(rec *Record) JSONRecord {
	values := make([]any, len(rec.Values))
	for i, v := range rec.Values {
		values[i] = mirror.Export(v)
	}
	return JSONRecord{
		Path:   rec.Path,
		Line:   rec.Line,
		Method: rec.Method,
		Kind:   rec.Kind,
		Values: values,
	}
}

// message is a CDP event or command response.
type message struct {
	ID     int64           `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

// consoleMessageAdded is the deprecated Console domain event. cdproto no
// longer models its parameters, which use the textual encoding.
type consoleMessageAdded struct {
	Message struct {
		Level      string            `json:"level"`
		Text       string            `json:"text"`
		Parameters []*mirror.Summary `json:"parameters"`
	} `json:"message"`
}

// Extract returns the record kind and remote objects of one protocol
// message.
func Extract(line []byte) (method, kind string, objects []*mirror.Summary, err error) {
	var msg message
	if err := json.Unmarshal(line, &msg); err != nil {
		return "", "", nil, xerrors.Errorf("invalid protocol message: %w", err)
	}

	switch msg.Method {
	case "Runtime.consoleAPICalled":
		var ev cdpruntime.EventConsoleAPICalled
		if err := json.Unmarshal(msg.Params, &ev); err != nil {
			return msg.Method, "", nil, xerrors.Errorf("invalid %s params: %w", msg.Method, err)
		}
		for _, arg := range ev.Args {
			objects = append(objects, mirror.FromRemoteObject(arg))
		}
		return msg.Method, string(ev.Type), objects, nil

	case "Runtime.exceptionThrown":
		var ev cdpruntime.EventExceptionThrown
		if err := json.Unmarshal(msg.Params, &ev); err != nil {
			return msg.Method, "", nil, xerrors.Errorf("invalid %s params: %w", msg.Method, err)
		}
		details := ev.ExceptionDetails
		if details == nil {
			return msg.Method, "", nil, xerrors.Errorf("%s without details: %w", msg.Method, ErrUnsupportedMessage)
		}
		if details.Exception == nil {
			return msg.Method, "exception", []*mirror.Summary{mirror.TextSummary(mirror.TypeString, mirror.SubtypeNone, details.Text)}, nil
		}
		return msg.Method, "exception", []*mirror.Summary{mirror.FromRemoteObject(details.Exception)}, nil

	case "Console.messageAdded":
		var ev consoleMessageAdded
		if err := json.Unmarshal(msg.Params, &ev); err != nil {
			return msg.Method, "", nil, xerrors.Errorf("invalid %s params: %w", msg.Method, err)
		}
		objects = ev.Message.Parameters
		if len(objects) == 0 && ev.Message.Text != "" {
			objects = []*mirror.Summary{mirror.TextSummary(mirror.TypeString, mirror.SubtypeNone, ev.Message.Text)}
		}
		return msg.Method, ev.Message.Level, objects, nil

	case "":
		if len(msg.Result) == 0 {
			break
		}
		var res cdpruntime.EvaluateReturns
		if err := json.Unmarshal(msg.Result, &res); err != nil || res.Result == nil {
			break
		}
		return "", "result", []*mirror.Summary{mirror.FromRemoteObject(res.Result)}, nil
	}
	return msg.Method, "", nil, ErrUnsupportedMessage
}

type options struct {
	decoder *mirror.Decoder
	logger  *zap.SugaredLogger
	workers int
}

// Option configures a reader.
type Option func(*options)

// WithDecoder sets the decoder values are rebuilt with.
func WithDecoder(d *mirror.Decoder) Option {
	return func(o *options) { o.decoder = d }
}

// WithLogger sets the logger skipped lines are reported to.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *options) { o.logger = l }
}

// WithWorkers limits how many files a FolderReader decodes at once.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

func newOptions(opts []Option) options {
	o := options{workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop().Sugar()
	}
	if o.decoder == nil {
		o.decoder = mirror.NewDecoder(mirror.WithRegistry(mirror.DefaultRegistry), mirror.WithLogger(o.logger))
	}
	if o.workers <= 0 {
		o.workers = 1
	}
	return o
}

// FileReader reads one capture file.
type FileReader struct {
	path string
	opts options
}

// NewFileReader creates a reader for the capture file at path.
func NewFileReader(path string, opts ...Option) *FileReader {
	return &FileReader{path: path, opts: newOptions(opts)}
}

// GetRecords decodes every supported message of the file in line order.
// Lines that are not protocol messages are logged and skipped.
func (fr *FileReader) GetRecords(ctx context.Context) ([]*Record, error) {
	r, err := capture.Open(fr.path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return readRecords(ctx, r, fr.path, fr.opts)
}

func readRecords(ctx context.Context, r io.Reader, path string, o options) ([]*Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var records []*Record
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		method, kind, objects, err := Extract(line)
		if err != nil {
			if xerrors.Is(err, ErrUnsupportedMessage) {
				o.logger.Debugw("skipping message", "path", path, "line", lineNo, "method", method)
			} else {
				o.logger.Warnw("skipping malformed line", "path", path, "line", lineNo, "error", err)
			}
			continue
		}

		rec := &Record{Path: path, Line: lineNo, Method: method, Kind: kind, Values: make([]mirror.Value, 0, len(objects))}
		for i, s := range objects {
			v, err := o.decoder.Decode(s)
			if err != nil {
				o.logger.Warnw("could not decode remote object", "path", path, "line", lineNo, "index", i, "error", err)
				v = mirror.String(fmt.Sprintf("<undecodable: %v>", err))
			}
			rec.Values = append(rec.Values, v)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, xerrors.Errorf("failed to read %s: %w", path, err)
	}
	return records, nil
}

// FolderReader reads every capture file below a directory.
type FolderReader struct {
	folderPath string
	opts       options
}

// NewFolderReader creates a reader for a folder of capture files.
func NewFolderReader(path string, opts ...Option) (*FolderReader, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, xerrors.Errorf("%s is not a directory", path)
	}
	return &FolderReader{folderPath: path, opts: newOptions(opts)}, nil
}

// GetRecords decodes all capture files concurrently. Records come back
// ordered by path, then line.
func (fr *FolderReader) GetRecords(ctx context.Context) ([]*Record, error) {
	var paths []string
	err := filepath.WalkDir(fr.folderPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsCaptureFile(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("could not walk %s: %w", fr.folderPath, err)
	}

	results := make([][]*Record, len(paths))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(fr.opts.workers)
	for i, path := range paths {
		eg.Go(func() error {
			fileReader := &FileReader{path: path, opts: fr.opts}
			records, err := fileReader.GetRecords(ctx)
			if err != nil {
				return xerrors.Errorf("could not read %s: %w", path, err)
			}
			results[i] = records
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var records []*Record
	for _, r := range results {
		records = append(records, r...)
	}
	return records, nil
}

// IsCaptureFile reports whether name looks like a capture: a JSON or JSON
// lines file, optionally with a .sz or .zst suffix.
func IsCaptureFile(name string) bool {
	name = strings.ToLower(name)
	name = strings.TrimSuffix(name, ".sz")
	name = strings.TrimSuffix(name, ".zst")
	switch filepath.Ext(name) {
	case ".jsonl", ".ndjson", ".json", ".log":
		return true
	}
	return false
}

// ReadRemoteObjects reads a file holding one RemoteObject or a JSON array
// of them.
func ReadRemoteObjects(path string) ([]*mirror.Summary, error) {
	r, err := capture.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, xerrors.Errorf("failed to read %s: %w", path, err)
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var summaries []*mirror.Summary
		if err := json.Unmarshal(data, &summaries); err != nil {
			return nil, xerrors.Errorf("invalid remote object list in %s: %w", path, err)
		}
		return summaries, nil
	}
	var s mirror.Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, xerrors.Errorf("invalid remote object in %s: %w", path, err)
	}
	return []*mirror.Summary{&s}, nil
}
