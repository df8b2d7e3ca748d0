package protein

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

const gzipMagic0, gzipMagic1 = 0x1f, 0x8b

// OpenDatabase opens a FASTA-like protein database from a local path or
// an s3:// URI, transparently decompressing it if it is gzip-encoded.
// An unreadable database is a fatal Io error (spec.md §7).
func OpenDatabase(path string) (io.ReadCloser, error) {
	var r io.ReadCloser
	var err error
	if strings.HasPrefix(path, "s3://") {
		r, err = openS3(path)
	} else {
		r, err = os.Open(path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "protein: opening database %q", path)
	}
	return maybeDecompress(r)
}

func openS3(uri string) (io.ReadCloser, error) {
	trimmed := strings.TrimPrefix(uri, "s3://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 {
		return nil, errors.Errorf("protein: malformed s3 uri %q", uri)
	}
	bucket, key := parts[0], parts[1]

	sess, err := session.NewSession()
	if err != nil {
		return nil, errors.Wrap(err, "protein: creating aws session")
	}
	client := s3.New(sess)
	downloader := s3manager.NewDownloaderWithClient(client)

	buf := &s3manager.WriteAtBuffer{}
	if _, err := downloader.Download(buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return nil, errors.Wrapf(err, "protein: downloading s3://%s/%s", bucket, key)
	}
	return io.NopCloser(bytes.NewReader(buf.Bytes())), nil
}

// maybeDecompress sniffs the first two bytes of r for the gzip magic
// number and, if present, wraps r in a gzip reader. Non-gzip streams
// are returned with their sniffed bytes restored via bufio.
func maybeDecompress(r io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "protein: sniffing database header")
	}
	if len(magic) == 2 && magic[0] == gzipMagic0 && magic[1] == gzipMagic1 {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, errors.Wrap(err, "protein: opening gzip database")
		}
		return &gzipReadCloser{gz: gz, underlying: r}, nil
	}
	return &bufferedReadCloser{r: br, underlying: r}, nil
}

type gzipReadCloser struct {
	gz         *gzip.Reader
	underlying io.Closer
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.gz.Read(p) }
func (g *gzipReadCloser) Close() error {
	if err := g.gz.Close(); err != nil {
		return err
	}
	return g.underlying.Close()
}

type bufferedReadCloser struct {
	r          *bufio.Reader
	underlying io.Closer
}

func (b *bufferedReadCloser) Read(p []byte) (int, error) { return b.r.Read(p) }
func (b *bufferedReadCloser) Close() error                { return b.underlying.Close() }
