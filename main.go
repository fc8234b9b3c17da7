package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dop251/goja"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/xerrors"

	"unmirror-go/config"
	"unmirror-go/devtools"
	"unmirror-go/devtools/capture"
	"unmirror-go/devtools/jsvm"
	"unmirror-go/devtools/mirror"
)

var formats = []string{"json", "jsonl", "text", "msgpack"}

var (
	verboseSet, maxDepthSet, workersSet bool

	app = kingpin.New("unmirror", "Rebuild JavaScript values from DevTools protocol remote objects.")

	verbose    = app.Flag("verbose", "Log skipped lines and decoding fallbacks.").Short('v').IsSetByUser(&verboseSet).Bool()
	configFile = app.Flag("config", "TOML options file.").ExistingFile()
	maxDepth   = app.Flag("max-depth", "Maximum nesting depth of previews.").IsSetByUser(&maxDepthSet).Int()
	workers    = app.Flag("workers", "Number of capture files decoded at once.").IsSetByUser(&workersSet).Int()

	// DECODE command
	decodeCmd        = app.Command("decode", "Decode a file holding one RemoteObject or an array of them.")
	decodePath       = decodeCmd.Arg("path", "Path to the JSON file.").Required().ExistingFile()
	decodeFormat     = decodeCmd.Flag("format", "Output format ('json', 'jsonl', 'text' or 'msgpack').").Enum(formats...)
	decodeOutputFile = decodeCmd.Flag("output-file", "Save output to a file.").Short('o').String()
	decodeCompress   = decodeCmd.Flag("compress", "Compress the output ('none', 'snappy' or 'zstd').").Default("none").Enum("none", "snappy", "zstd")

	// CAPTURE command
	captureCmd        = app.Command("capture", "Decode the remote objects of a protocol capture file or folder.")
	capturePath       = captureCmd.Arg("path", "Path to the capture file or folder.").Required().ExistingFileOrDir()
	captureFormat     = captureCmd.Flag("format", "Output format ('json', 'jsonl', 'text' or 'msgpack').").Enum(formats...)
	captureOutputFile = captureCmd.Flag("output-file", "Save output to a file.").Short('o').String()
	captureCompress   = captureCmd.Flag("compress", "Compress the output ('none', 'snappy' or 'zstd').").Default("none").Enum("none", "snappy", "zstd")

	// EVAL command
	evalCmd        = app.Command("eval", "Evaluate a JavaScript expression over every capture record, with its values bound to args.")
	evalPath       = evalCmd.Arg("path", "Path to the capture file or folder.").Required().ExistingFileOrDir()
	evalExpression = evalCmd.Arg("expression", "Expression to evaluate, e.g. 'args[0].message'.").Required().String()
	evalFormat     = evalCmd.Flag("format", "Output format ('json', 'jsonl', 'text' or 'msgpack').").Enum(formats...)
	evalOutputFile = evalCmd.Flag("output-file", "Save output to a file.").Short('o').String()
)

func main() {
	debug.SetTraceback("crash") // Enables full stack trace on panic
	command := kingpin.MustParse(app.Parse(os.Args[1:]))
	os.Exit(run(command))
}

// run executes the parsed command and returns the process exit code.
func run(command string) int {
	opts, err := loadOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading options: %v\n", err)
		return 1
	}
	if err := config.InitLogger(opts.Verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		return 1
	}
	defer config.Logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch command {
	case decodeCmd.FullCommand():
		err = runDecodeCommand(*decodePath, pick(*decodeFormat, opts.Format), *decodeOutputFile, *decodeCompress, opts)
	case captureCmd.FullCommand():
		err = runCaptureCommand(ctx, *capturePath, pick(*captureFormat, opts.Format), *captureOutputFile, *captureCompress, opts)
	case evalCmd.FullCommand():
		err = runEvalCommand(ctx, *evalPath, *evalExpression, pick(*evalFormat, opts.Format), *evalOutputFile, opts)
	default:
		err = xerrors.Errorf("unknown command %q", command)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// loadOptions merges the options file with the flags given on the command
// line.
func loadOptions() (*config.Options, error) {
	opts := config.Default()
	if *configFile != "" {
		var err error
		if opts, err = config.Load(*configFile); err != nil {
			return nil, err
		}
	}
	if verboseSet {
		opts.Verbose = *verbose
	}
	if maxDepthSet {
		opts.MaxDepth = *maxDepth
	}
	if workersSet {
		opts.Workers = *workers
	}
	return opts, opts.Validate()
}

func pick(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}

func newDecoder(opts *config.Options) *mirror.Decoder {
	decoderOpts := []mirror.Option{
		mirror.WithRegistry(mirror.DefaultRegistry),
		mirror.WithLogger(config.Logger),
		mirror.WithMaxDepth(opts.MaxDepth),
	}
	if !opts.Symbols {
		decoderOpts = append(decoderOpts, mirror.WithoutSymbols())
	}
	if !opts.Collections {
		decoderOpts = append(decoderOpts, mirror.WithoutCollections())
	}
	return mirror.NewDecoder(decoderOpts...)
}

// outputWriter closes the compressor before the file underneath it.
type outputWriter struct {
	io.WriteCloser
	file io.Closer
}

func (w *outputWriter) Close() error {
	err := w.WriteCloser.Close()
	if w.file != nil {
		if cerr := w.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// getOutputWriter determines if the output should go to stdout or a file.
func getOutputWriter(outputFile, compress string) (io.WriteCloser, error) {
	c, err := capture.ParseCompression(compress)
	if err != nil {
		return nil, err
	}

	var (
		dst  io.Writer = os.Stdout
		file io.Closer
	)
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return nil, err
		}
		dst, file = f, f
	}

	enc, err := capture.NewWriter(dst, c)
	if err != nil {
		if file != nil {
			file.Close()
		}
		return nil, err
	}
	return &outputWriter{WriteCloser: enc, file: file}, nil
}

// writeOutput writes items in the chosen format. encode gives the JSON and
// msgpack form of an item, text its one line rendering.
func writeOutput[T any](w io.Writer, format string, items []T, encode func(T) any, text func(T) string) error {
	switch format {
	case "jsonl":
		for _, item := range items {
			line, err := json.Marshal(encode(item))
			if err != nil {
				config.Logger.Warnw("could not marshal record to JSONL", "error", err)
				continue
			}
			fmt.Fprintln(w, string(line))
		}
	case "text":
		for _, item := range items {
			fmt.Fprintln(w, text(item))
		}
	case "msgpack":
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		encoded := make([]any, len(items))
		for i, item := range items {
			encoded[i] = encode(item)
		}
		if err := enc.Encode(encoded); err != nil {
			return xerrors.Errorf("encoding msgpack: %w", err)
		}
	default:
		encoded := make([]any, len(items))
		for i, item := range items {
			encoded[i] = encode(item)
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(encoded); err != nil {
			return xerrors.Errorf("encoding JSON: %w", err)
		}
	}
	return nil
}

func runDecodeCommand(path, format, outputFile, compress string, opts *config.Options) error {
	fmt.Fprintf(os.Stderr, "🔎 Decoding remote objects: %s\n", path)
	summaries, err := devtools.ReadRemoteObjects(path)
	if err != nil {
		return err
	}

	decoder := newDecoder(opts)
	values := make([]mirror.Value, 0, len(summaries))
	for i, s := range summaries {
		v, err := decoder.Decode(s)
		if err != nil {
			config.Logger.Warnw("could not decode remote object", "path", path, "index", i, "error", err)
			v = mirror.String(fmt.Sprintf("<undecodable: %v>", err))
		}
		values = append(values, v)
	}

	writer, err := getOutputWriter(outputFile, compress)
	if err != nil {
		return xerrors.Errorf("creating output file: %w", err)
	}
	defer writer.Close()

	if err := writeOutput(writer, format, values, mirror.Export, mirror.Format); err != nil {
		return err
	}
	if outputFile != "" {
		fmt.Fprintf(os.Stderr, "✅ Output successfully saved to %s\n", outputFile)
	}
	return nil
}

func readCapture(ctx context.Context, path string, opts *config.Options) ([]*devtools.Record, error) {
	readerOpts := []devtools.Option{
		devtools.WithDecoder(newDecoder(opts)),
		devtools.WithLogger(config.Logger),
	}
	if opts.Workers > 0 {
		readerOpts = append(readerOpts, devtools.WithWorkers(opts.Workers))
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return devtools.NewFileReader(path, readerOpts...).GetRecords(ctx)
	}
	reader, err := devtools.NewFolderReader(path, readerOpts...)
	if err != nil {
		return nil, xerrors.Errorf("creating folder reader: %w", err)
	}
	return reader.GetRecords(ctx)
}

func formatRecord(rec *devtools.Record) string {
	parts := make([]string, len(rec.Values))
	for i, v := range rec.Values {
		parts[i] = mirror.Format(v)
	}
	return fmt.Sprintf("%s:%d [%s] %s", rec.Path, rec.Line, rec.Kind, strings.Join(parts, " "))
}

func runCaptureCommand(ctx context.Context, path, format, outputFile, compress string, opts *config.Options) error {
	fmt.Fprintf(os.Stderr, "🔎 Parsing capture: %s\n", path)
	records, err := readCapture(ctx, path, opts)
	if err != nil {
		return err
	}

	writer, err := getOutputWriter(outputFile, compress)
	if err != nil {
		return xerrors.Errorf("creating output file: %w", err)
	}
	defer writer.Close()

	encode := func(rec *devtools.Record) any { return devtools.ToJSONRecord(rec) }
	if err := writeOutput(writer, format, records, encode, formatRecord); err != nil {
		return err
	}
	if outputFile != "" {
		fmt.Fprintf(os.Stderr, "✅ Output successfully saved to %s\n", outputFile)
	}
	return nil
}

// evalResult is the outcome of the eval expression for one record.
type evalResult struct {
	Path   string `json:"path"`
	Line   int    `json:"line"`
	Kind   string `json:"kind"`
	Result any    `json:"result"`

	text string
}

func runEvalCommand(ctx context.Context, path, expression, format, outputFile string, opts *config.Options) error {
	fmt.Fprintf(os.Stderr, "🔎 Evaluating over capture: %s\n", path)
	records, err := readCapture(ctx, path, opts)
	if err != nil {
		return err
	}

	// one runtime, so instances of a class share a constructor across records
	m := jsvm.New(goja.New(), config.Logger)
	results := make([]*evalResult, 0, len(records))
	for _, rec := range records {
		res, err := m.Eval(expression, rec.Values)
		if err != nil {
			config.Logger.Warnw("evaluation failed", "path", rec.Path, "line", rec.Line, "error", err)
			continue
		}
		results = append(results, &evalResult{
			Path:   rec.Path,
			Line:   rec.Line,
			Kind:   rec.Kind,
			Result: res.Export(),
			text:   res.String(),
		})
	}

	writer, err := getOutputWriter(outputFile, "none")
	if err != nil {
		return xerrors.Errorf("creating output file: %w", err)
	}
	defer writer.Close()

	encode := func(r *evalResult) any { return r }
	text := func(r *evalResult) string { return fmt.Sprintf("%s:%d %s", r.Path, r.Line, r.text) }
	if err := writeOutput(writer, format, results, encode, text); err != nil {
		return err
	}
	if outputFile != "" {
		fmt.Fprintf(os.Stderr, "✅ Output successfully saved to %s\n", outputFile)
	}
	return nil
}
