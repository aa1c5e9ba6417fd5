package task

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

type writerMsgKind int

const (
	msgOpen writerMsgKind = iota
	msgData
	msgEOF
	msgAbort
)

type writerMsg struct {
	kind  writerMsgKind
	token string
	data  []byte
}

// FileWriter is the background spill-file service: it serializes all
// regular-file writes off the orchestrator goroutine, since ordinary-file
// writes cannot reliably be made non-blocking. One goroutine owns every
// open handle; OpenFiles, Write, Close and SignalQuit are called from the
// orchestrator goroutine and only enqueue messages for it.
type FileWriter struct {
	outdir, errdir string
	queue          chan writerMsg
	done           chan struct{}

	hostCounts map[string]int
	files      map[string]*os.File
	bufs       map[string]*bufio.Writer
}

// NewFileWriter starts the background writer goroutine. outdir/errdir may
// be empty to disable that sink.
func NewFileWriter(outdir, errdir string) *FileWriter {
	w := &FileWriter{
		outdir:     outdir,
		errdir:     errdir,
		queue:      make(chan writerMsg, 64),
		done:       make(chan struct{}),
		hostCounts: make(map[string]int),
		files:      make(map[string]*os.File),
		bufs:       make(map[string]*bufio.Writer),
	}
	go w.run()
	return w
}

func (w *FileWriter) run() {
	defer close(w.done)
	for msg := range w.queue {
		switch msg.kind {
		case msgAbort:
			w.closeAll()
			return
		case msgOpen:
			f, err := os.OpenFile(msg.token, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
			if err != nil {
				// Nothing reads the error back; no handle is stored, so
				// later data and EOF messages for this token are
				// silently dropped.
				continue
			}
			w.files[msg.token] = f
			w.bufs[msg.token] = bufio.NewWriter(f)
		case msgData:
			if buf, ok := w.bufs[msg.token]; ok {
				buf.Write(msg.data)
				buf.Flush()
			}
		case msgEOF:
			if buf, ok := w.bufs[msg.token]; ok {
				buf.Flush()
				delete(w.bufs, msg.token)
			}
			if f, ok := w.files[msg.token]; ok {
				f.Close()
				delete(w.files, msg.token)
			}
		}
	}
}

// closeAll flushes and closes every file still open when the writer is
// aborted mid-run (e.g. an interrupted batch where some tasks never sent
// EOF for their spill files), so an interrupt never leaks file handles.
func (w *FileWriter) closeAll() {
	for token, buf := range w.bufs {
		buf.Flush()
		delete(w.bufs, token)
	}
	for token, f := range w.files {
		f.Close()
		delete(w.files, token)
	}
}

// OpenFiles allocates outdir/<host> and errdir/<host> filenames (with a
// numeric suffix on collision: host, host.1, host.2, ...), enqueues OPEN
// messages for each requested sink, and returns the two filename tokens.
// Either may be empty if outdir/errdir is not set. Called from the
// orchestrator goroutine at task start.
func (w *FileWriter) OpenFiles(host string) (outfile, errfile string) {
	if w.outdir == "" && w.errdir == "" {
		return "", ""
	}
	count := w.hostCounts[host]
	w.hostCounts[host] = count + 1
	name := host
	if count > 0 {
		name = fmt.Sprintf("%s.%d", host, count)
	}
	if w.outdir != "" {
		outfile = filepath.Join(w.outdir, name)
		w.queue <- writerMsg{kind: msgOpen, token: outfile}
	}
	if w.errdir != "" {
		errfile = filepath.Join(w.errdir, name)
		w.queue <- writerMsg{kind: msgOpen, token: errfile}
	}
	return outfile, errfile
}

// Write enqueues a chunk of bytes to append to the file behind token.
func (w *FileWriter) Write(token string, data []byte) {
	if token == "" {
		return
	}
	w.queue <- writerMsg{kind: msgData, token: token, data: data}
}

// Close enqueues EOF for the file behind token.
func (w *FileWriter) Close(token string) {
	if token == "" {
		return
	}
	w.queue <- writerMsg{kind: msgEOF, token: token}
}

// SignalQuit requests the writer goroutine terminate; Join blocks until it
// has.
func (w *FileWriter) SignalQuit() {
	w.queue <- writerMsg{kind: msgAbort}
}

// Join blocks until the writer goroutine has exited.
func (w *FileWriter) Join() {
	<-w.done
}
