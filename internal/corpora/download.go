package corpora

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/haricheung/keytutor/internal/bus"
)

// Progress is one download-job snapshot, broadcast on the progress bus and
// also readable synchronously via Job.Snapshot for cooperative polling.
type Progress struct {
	Key         string
	BytesDone   int64
	BytesTotal  int64 // 0 when the server did not report Content-Length
	Done        bool
	Success     bool
}

// ProgressTopic is the bus topic every download job publishes Progress on.
const ProgressTopic = "corpora.download"

// Job is a single background download, exposing the three-atomics-plus-
// success-flag shape the coordinator polls at tick rate, per the
// concurrency model's download-job description.
type Job struct {
	key        string
	bytesDone  atomic.Int64
	bytesTotal atomic.Int64
	done       atomic.Bool
	success    atomic.Bool
	result     []byte
	err        error
	wg         sync.WaitGroup
	bus        *bus.Bus[Progress]
}

// Snapshot returns the job's current progress without blocking.
func (j *Job) Snapshot() Progress {
	return Progress{
		Key:        j.key,
		BytesDone:  j.bytesDone.Load(),
		BytesTotal: j.bytesTotal.Load(),
		Done:       j.done.Load(),
		Success:    j.success.Load(),
	}
}

// Join blocks until the job finishes and returns its fetched bytes and error.
// An in-flight job always runs to completion even if the caller stops
// polling; Join simply waits for that completion.
func (j *Job) Join() ([]byte, error) {
	j.wg.Wait()
	return j.result, j.err
}

func (j *Job) publish() {
	if j.bus != nil {
		j.bus.Publish(ProgressTopic, j.Snapshot())
	}
}

// StartDownload launches a background fetch of url and returns a Job the
// caller can poll (Snapshot) or block on (Join). progressBus may be nil, in
// which case progress is only observable via Snapshot.
func StartDownload(ctx context.Context, key, url string, progressBus *bus.Bus[Progress]) *Job {
	j := &Job{key: key, bus: progressBus}
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		data, err := fetchURLBytes(ctx, url, func(done, total int64) {
			j.bytesDone.Store(done)
			j.bytesTotal.Store(total)
			j.publish()
		})
		j.result, j.err = data, err
		j.success.Store(err == nil)
		j.done.Store(true)
		j.publish()
	}()
	return j
}

type countingReader struct {
	r      io.Reader
	onRead func(n int64)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 && c.onRead != nil {
		c.onRead(int64(n))
	}
	return n, err
}

// fetchURLBytes performs one GET, reporting cumulative bytes read to
// onProgress(done, total) as the body streams in. total is 0 when the
// response has no Content-Length.
func fetchURLBytes(ctx context.Context, url string, onProgress func(done, total int64)) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("corpora: fetch %s: unexpected status %s", url, resp.Status)
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}
	var done int64
	reader := &countingReader{r: resp.Body, onRead: func(n int64) {
		done += n
		onProgress(done, total)
	}}
	return io.ReadAll(reader)
}

// DownloadCodeRepoToCache fetches every URL in repo, extracts snippets with
// style, and writes up to limit of them (0 = unbounded) to
// cacheDir/{languageKey}_{repo.Key}.txt, joined by the same SNIPPET
// separator the cache loader expects. Returns the cache file path.
func DownloadCodeRepoToCache(ctx context.Context, cacheDir, languageKey string, repo CodeRepo, style BlockStyle, limit int, progressBus *bus.Bus[Progress]) (string, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", err
	}

	var all []string
	for _, url := range repo.URLs {
		job := StartDownload(ctx, languageKey+"_"+repo.Key, url, progressBus)
		data, err := job.Join()
		if err != nil {
			continue
		}
		all = append(all, ExtractCodeSnippets(string(data), style)...)
	}
	if len(all) == 0 {
		return "", fmt.Errorf("corpora: no snippets extracted for %s/%s", languageKey, repo.Key)
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	path := filepath.Join(cacheDir, languageKey+"_"+repo.Key+".txt")
	combined := strings.Join(all, snippetSeparator)
	if err := os.WriteFile(path, []byte(combined), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

const snippetSeparator = "\n---SNIPPET---\n"

// LoadCachedSnippets reads every cached snippet file for language from
// cacheDir (files named "{language}_*.txt"), returning each snippet paired
// with the repo key its filename encodes.
func LoadCachedSnippets(cacheDir, language string) []CachedSnippet {
	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		return nil
	}
	prefix := language + "_"
	var out []CachedSnippet
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".txt") {
			continue
		}
		repoKey := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".txt")
		content, err := os.ReadFile(filepath.Join(cacheDir, name))
		if err != nil {
			continue
		}
		for _, s := range strings.Split(string(content), snippetSeparator) {
			if strings.TrimSpace(s) == "" {
				continue
			}
			out = append(out, CachedSnippet{Text: s, RepoKey: repoKey})
		}
	}
	return out
}

// CachedSnippet is one code snippet loaded back from the on-disk cache.
type CachedSnippet struct {
	Text    string
	RepoKey string
}

// DownloadBookToCache fetches a Gutenberg book's raw text and caches it at
// cacheDir/{book.Key}.txt, for later paragraph extraction by LoadCachedBook.
func DownloadBookToCache(ctx context.Context, cacheDir string, book GutenbergBook, progressBus *bus.Bus[Progress]) (string, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", err
	}
	job := StartDownload(ctx, book.Key, GutenbergURL(book.GutenbergID), progressBus)
	data, err := job.Join()
	if err != nil {
		return "", err
	}
	path := filepath.Join(cacheDir, book.Key+".txt")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// LoadCachedBook reads a previously cached book and extracts its paragraphs,
// or returns (nil, false) if it isn't cached.
func LoadCachedBook(cacheDir string, book GutenbergBook, paragraphLimit int) ([]string, bool) {
	data, err := os.ReadFile(filepath.Join(cacheDir, book.Key+".txt"))
	if err != nil {
		return nil, false
	}
	return ExtractParagraphs(string(data), paragraphLimit), true
}

// IsBookCached reports whether book has a non-empty cache file under cacheDir.
func IsBookCached(cacheDir string, book GutenbergBook) bool {
	info, err := os.Stat(filepath.Join(cacheDir, book.Key+".txt"))
	return err == nil && info.Size() > 0
}

// IsLanguageCached reports whether any non-empty cache file exists for
// language under cacheDir.
func IsLanguageCached(cacheDir, language string) bool {
	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		return false
	}
	prefix := language + "_"
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".txt") {
			if info, err := e.Info(); err == nil && info.Size() > 0 {
				return true
			}
		}
	}
	return false
}
