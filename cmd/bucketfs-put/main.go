// Command bucketfs-put streams a local file to an object through the
// BucketFS upload pipeline.
//
// It exercises the full write path the filesystem layer uses: a streaming
// put request, strictly sequential chunked writes, completion, and errno
// translation. On failure the process exits with the same errno a
// filesystem caller would have seen.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/marmos91/bucketfs/internal/logger"
	"github.com/marmos91/bucketfs/pkg/config"
	"github.com/marmos91/bucketfs/pkg/fs"
	"github.com/marmos91/bucketfs/pkg/metrics"
	"github.com/marmos91/bucketfs/pkg/upload"
)

const defaultChunkSize = 1024 * 1024

func main() {
	configPath := flag.String("config", "", "Path to config file (default: "+config.GetDefaultConfigPath()+")")
	bucket := flag.String("bucket", "", "Target bucket (required)")
	key := flag.String("key", "", "Target object key (required)")
	file := flag.String("file", "", "Local file to upload, or '-' for stdin (required)")
	chunkSize := flag.Int("chunk-size", defaultChunkSize, "Write size in bytes")
	flag.Parse()

	if *bucket == "" || *key == "" || *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bucketfs-put: %v\n", err)
		os.Exit(2)
	}

	logger.SetLevel(cfg.Logging.Level)
	logger.SetFormat(cfg.Logging.Format)
	if err := setLogOutput(cfg.Logging.Output); err != nil {
		fmt.Fprintf(os.Stderr, "bucketfs-put: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		srv := metrics.NewServer(cfg.Metrics.Listen)
		go func() {
			if err := srv.Start(ctx); err != nil {
				logger.Error("metrics server: %v", err)
			}
		}()
	}

	client, err := config.BuildObjectClient(ctx, &cfg.Content, metrics.NewUploadMetrics())
	if err != nil {
		fmt.Fprintf(os.Stderr, "bucketfs-put: %v\n", err)
		os.Exit(2)
	}

	errno := run(ctx, upload.NewUploader(client), *bucket, *key, *file, *chunkSize)
	if errno != 0 {
		os.Exit(int(errno))
	}
}

// run performs the upload and returns 0 on success or the errno a
// filesystem caller would have seen.
func run(ctx context.Context, uploader *upload.Uploader, bucket, key, file string, chunkSize int) syscall.Errno {
	f := os.Stdin
	if file != "-" {
		var err error
		f, err = os.Open(file)
		if err != nil {
			logger.Error("cannot open %s: %v", file, err)
			return fs.ErrnoOf(err)
		}
	}
	// The upload request owns f from here: it is closed exactly once, when
	// the request leaves the in-progress state.

	request, err := uploader.Put(ctx, bucket, key, f)
	if err != nil {
		f.Close()
		return report(err, "open")
	}

	buf := make([]byte, chunkSize)
	var offset int64
	for {
		n, err := f.Read(buf)
		if n > 0 {
			written, werr := request.Write(ctx, offset, buf[:n])
			if werr != nil {
				_ = request.Abort(ctx)
				return report(werr, "write")
			}
			offset += int64(written)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Error("cannot read %s: %v", file, err)
			_ = request.Abort(ctx)
			return fs.ErrnoOf(err)
		}
	}

	result, err := request.Complete(ctx)
	if err != nil {
		return report(err, "release")
	}

	logger.Info("uploaded s3://%s/%s: %d bytes etag=%s", bucket, key, result.Size, result.ETag)
	return 0
}

// report translates an upload failure, emits the structured error event,
// and returns the errno.
func report(err error, operation string) syscall.Errno {
	fsErr, ok := err.(*fs.Error)
	if !ok {
		if te, classified := err.(fs.ToErrno); classified {
			fsErr = fs.FromUploadError(te)
		} else {
			fsErr = fs.NewError(fs.ErrnoOf(err), "upload error").Apply(fs.WithCause(err))
		}
	}
	fs.LogFSErrorEvent(fsErr, operation, 0)
	return fsErr.Errno
}

// setLogOutput points the logger at stdout, stderr, or a file path.
func setLogOutput(output string) error {
	switch output {
	case "", "stdout":
		return nil
	case "stderr":
		logger.SetOutput(os.Stderr)
		return nil
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("cannot open log output %s: %w", output, err)
		}
		logger.SetOutput(f)
		return nil
	}
}
