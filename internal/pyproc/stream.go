package pyproc

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"pkt.systems/pslog"
)

const readBufferSize = 32 * 1024

// chunkStream merges stdout and stderr into one channel of raw chunks.
// Chunk boundaries carry no meaning; consumers must accumulate.
type chunkStream struct {
	chunks chan []byte
	closed chan struct{}
	once   sync.Once
	errMu  sync.Mutex
	err    error
	wg     sync.WaitGroup
	log    pslog.Logger
}

func newChunkStream(stdout, stderr io.Reader, log pslog.Logger) *chunkStream {
	s := &chunkStream{
		chunks: make(chan []byte, 256),
		closed: make(chan struct{}),
		log:    log,
	}
	s.wg.Add(2)
	go s.read("stdout", stdout)
	go s.read("stderr", stderr)
	go func() {
		s.wg.Wait()
		close(s.chunks)
	}()
	return s
}

func (s *chunkStream) read(name string, reader io.Reader) {
	defer s.wg.Done()
	buf := make([]byte, readBufferSize)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case s.chunks <- chunk:
			case <-s.closed:
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				if s.log != nil {
					s.log.Warn("interpreter read failed", "stream", name, "err", err)
				}
				s.setErr(err)
			}
			return
		}
	}
}

func (s *chunkStream) setErr(err error) {
	if err == nil {
		return
	}
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

// Next returns the next raw chunk, io.EOF after both pipes drain, or the
// first read error.
func (s *chunkStream) Next(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case chunk, ok := <-s.chunks:
		if ok {
			return chunk, nil
		}
		s.errMu.Lock()
		err := s.err
		s.errMu.Unlock()
		if err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
}

// Close stops the readers. Pending chunks already queued are dropped.
func (s *chunkStream) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}
