package content

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/ktnyt/fae-sub001/internal/debug"
	"github.com/ktnyt/fae-sub001/internal/ferrors"
	"github.com/ktnyt/fae-sub001/internal/ignore"
	"github.com/ktnyt/fae-sub001/internal/message"
)

const defaultMaxFileSize = 1 << 20 // 1 MiB, spec.md §6 default

// binaryExtensions blocks the file kinds spec.md §4.4 names: executables,
// images, audio/video, archives, office documents.
var binaryExtensions = map[string]bool{
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".bin": true, ".o": true, ".a": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true, ".ico": true, ".webp": true,
	".mp3": true, ".wav": true, ".flac": true, ".mp4": true, ".mov": true, ".avi": true, ".mkv": true,
	".zip": true, ".tar": true, ".gz": true, ".bz2": true, ".xz": true, ".7z": true, ".rar": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true, ".ppt": true, ".pptx": true,
}

// NativeOptions configures the native backend (spec.md §6 constructor
// parameters).
type NativeOptions struct {
	Ignore             *ignore.Matcher
	MaxFileSize        int64
	ExcludedExtensions []string
	MaxConcurrentReads int64
}

// NativeBackend is the always-available, dependency-free content-search
// implementation. Grounded on the teacher's internal/search/engine.go
// (regexp-based line scanning, extension-based file categorization) and
// internal/indexing's ignore-aware walk.
type NativeBackend struct {
	opts     NativeOptions
	excluded map[string]bool
	sem      *semaphore.Weighted
	log      *debug.Logger
}

// NewNativeBackend builds the native backend.
func NewNativeBackend(opts NativeOptions, log *debug.Logger) *NativeBackend {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = defaultMaxFileSize
	}
	conc := opts.MaxConcurrentReads
	if conc <= 0 {
		conc = int64(runtime.NumCPU())
	}
	excluded := make(map[string]bool, len(binaryExtensions)+len(opts.ExcludedExtensions))
	for ext := range binaryExtensions {
		excluded[ext] = true
	}
	for _, ext := range opts.ExcludedExtensions {
		excluded[strings.ToLower(ext)] = true
	}
	return &NativeBackend{opts: opts, excluded: excluded, sem: semaphore.NewWeighted(conc), log: log}
}

func (b *NativeBackend) Name() string { return "native" }

// Search walks root in file-walk order, reading candidate files with
// bounded concurrency (golang.org/x/sync/semaphore, teacher go.mod
// dependency used the way the teacher bounds its own parallel file
// workers) while still emitting results strictly in walk order, per
// spec.md §5 ("Line ordering is file-walk order; within a line, results
// emerge left-to-right").
func (b *NativeBackend) Search(ctx context.Context, params message.SearchParams, root string, onResult OnResult) (int, error) {
	var re *regexp.Regexp
	if params.Mode == message.ModeRegexp {
		compiled, err := regexp.Compile(params.Query)
		if err != nil {
			return 0, ferrors.NewSearchError(params.Query, err)
		}
		re = compiled
	}

	var candidates []string
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			relPath, relErr := filepath.Rel(root, path)
			if relErr == nil && b.opts.Ignore != nil && b.opts.Ignore.ShouldIgnore(relPath, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !b.acceptsFile(path, info, root) {
			return nil
		}
		candidates = append(candidates, path)
		return nil
	})

	results := make([][]message.SearchResult, len(candidates))
	var wg sync.WaitGroup
	for i, path := range candidates {
		if ctx.Err() != nil {
			break
		}
		if err := b.sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer b.sem.Release(1)
			results[i] = scanFile(path, params.Query, re)
		}(i, path)

		if i%10 == 9 {
			runtime.Gosched() // periodic yield, spec.md §5
		}
	}
	wg.Wait()

	count := 0
	for i := range candidates {
		if ctx.Err() != nil {
			return count, nil
		}
		for _, r := range results[i] {
			if !onResult(r) {
				return count, nil
			}
			count++
		}
	}
	return count, nil
}

func (b *NativeBackend) acceptsFile(path string, info os.FileInfo, root string) bool {
	if info.Size() > b.opts.MaxFileSize {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	if b.excluded[ext] {
		return false
	}
	relPath, err := filepath.Rel(root, path)
	if err != nil {
		relPath = path
	}
	if b.opts.Ignore != nil && b.opts.Ignore.ShouldIgnore(relPath, false) {
		return false
	}
	return true
}

// scanFile returns every match in path: for literal mode, every
// non-overlapping occurrence per line; for regex mode, every match
// position. A file that cannot be opened (permission, dangling link) yields
// no results, and a read error part-way (e.g. a line over the scanner's
// 8 MiB limit) ends the file with the results found so far; neither is
// logged.
func scanFile(path, query string, re *regexp.Regexp) []message.SearchResult {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var out []message.SearchResult
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 8*1024*1024)
	lineNo := uint32(0)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if re != nil {
			for _, loc := range re.FindAllStringIndex(line, -1) {
				out = append(out, message.SearchResult{
					Filename: path,
					Line:     lineNo,
					Offset:   uint32(loc[0]) + 1,
					Content:  line,
				})
			}
			continue
		}
		if query == "" {
			continue
		}
		start := 0
		for {
			idx := strings.Index(line[start:], query)
			if idx < 0 {
				break
			}
			col := start + idx
			out = append(out, message.SearchResult{
				Filename: path,
				Line:     lineNo,
				Offset:   uint32(col) + 1,
				Content:  line,
			})
			start = col + len(query)
		}
	}
	return out
}
