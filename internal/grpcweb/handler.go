// Package grpcweb lets browsers call the scheduler service over HTTP/1.1
// using grpc-web framing with JSON payloads.
package grpcweb

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"

	"appointment-scheduler/internal/api"
	"appointment-scheduler/internal/middleware"
)

const (
	ContentType = "application/grpc-web+json"

	// MaxBody caps the request frame.
	MaxBody = 1 << 20

	flagData    = 0x00
	flagTrailer = 0x80
)

// forwarded request headers, lower-cased as gRPC metadata keys
var forwardHeaders = []string{"authorization", middleware.RequestIDHeader}

// Bridge translates grpc-web calls into native gRPC calls on conn.
type Bridge struct {
	conn *grpc.ClientConn
	log  *zap.Logger
}

// New connects to the gRPC server at addr. Extra dial options are appended
// to the insecure transport credentials.
func New(addr string, log *zap.Logger, opts ...grpc.DialOption) (*Bridge, error) {
	if log == nil {
		log = zap.NewNop()
	}
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpcweb dial: %w", err)
	}
	return &Bridge{conn: conn, log: log}, nil
}

func (b *Bridge) Close() error { return b.conn.Close() }

// ServeHTTP forwards one unary call. The path names the method, e.g.
// /scheduler.v1.Scheduler/Login.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/grpc-web") {
		http.Error(w, "not grpc-web", http.StatusUnsupportedMediaType)
		return
	}
	if !strings.HasPrefix(r.URL.Path, "/"+api.ServiceName+"/") {
		writeStatus(w, nil, status.New(codes.Unimplemented, "unknown service"))
		return
	}

	payload, err := readFrame(io.LimitReader(r.Body, MaxBody+5))
	if err != nil {
		writeStatus(w, nil, status.New(codes.InvalidArgument, err.Error()))
		return
	}

	md := metadata.MD{}
	for _, k := range forwardHeaders {
		if vals := r.Header.Values(k); len(vals) > 0 {
			md.Set(k, vals...)
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		md.Set(middleware.ForwardedForHeader, host)
	}
	ctx := metadata.NewOutgoingContext(r.Context(), md)

	var header metadata.MD
	resp := &rawMsg{}
	err = b.conn.Invoke(ctx, r.URL.Path, &rawMsg{data: payload}, resp,
		grpc.ForceCodec(rawCodec{}), grpc.Header(&header))
	if err != nil {
		st := status.Convert(err)
		b.log.Debug("grpc-web call failed",
			zap.String("method", r.URL.Path), zap.String("code", st.Code().String()))
		writeStatus(w, header, st)
		return
	}
	writeResponse(w, header, resp.data)
}

// readFrame returns the payload of the single uncompressed data frame.
func readFrame(r io.Reader) ([]byte, error) {
	var hdr [5]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, errors.New("body too short")
	}
	if hdr[0] != flagData {
		return nil, fmt.Errorf("unsupported frame flag %#x", hdr[0])
	}
	n := binary.BigEndian.Uint32(hdr[1:])
	if n > MaxBody {
		return nil, errors.New("message too large")
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, errors.New("incomplete frame")
	}
	return payload, nil
}

// rawMsg carries already encoded JSON bytes.
type rawMsg struct{ data []byte }

// rawCodec passes bytes through untouched. It reports the JSON subtype so
// the server picks the matching codec.
type rawCodec struct{}

func (rawCodec) Marshal(v any) ([]byte, error) {
	m, ok := v.(*rawMsg)
	if !ok {
		return nil, fmt.Errorf("rawCodec: unexpected %T", v)
	}
	return m.data, nil
}

func (rawCodec) Unmarshal(data []byte, v any) error {
	m, ok := v.(*rawMsg)
	if !ok {
		return fmt.Errorf("rawCodec: unexpected %T", v)
	}
	m.data = append([]byte(nil), data...)
	return nil
}

func (rawCodec) Name() string { return api.CodecName }

func frame(flag byte, data []byte) []byte {
	out := make([]byte, 5+len(data))
	out[0] = flag
	binary.BigEndian.PutUint32(out[1:5], uint32(len(data)))
	copy(out[5:], data)
	return out
}

func writeHeaders(w http.ResponseWriter, header metadata.MD) {
	w.Header().Set("Content-Type", ContentType)
	for _, v := range header.Get(middleware.RequestIDHeader) {
		w.Header().Add(middleware.RequestIDHeader, v)
	}
	w.WriteHeader(http.StatusOK)
}

func trailer(st *status.Status) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "grpc-status:%d\r\n", st.Code())
	if msg := st.Message(); msg != "" {
		fmt.Fprintf(&sb, "grpc-message:%s\r\n", url.PathEscape(msg))
	}
	if len(st.Details()) > 0 {
		if raw, err := proto.Marshal(st.Proto()); err == nil {
			fmt.Fprintf(&sb, "grpc-status-details-bin:%s\r\n", base64.StdEncoding.EncodeToString(raw))
		}
	}
	return []byte(sb.String())
}

func writeResponse(w http.ResponseWriter, header metadata.MD, data []byte) {
	writeHeaders(w, header)
	_, _ = w.Write(frame(flagData, data))
	_, _ = w.Write(frame(flagTrailer, trailer(status.New(codes.OK, ""))))
}

func writeStatus(w http.ResponseWriter, header metadata.MD, st *status.Status) {
	writeHeaders(w, header)
	_, _ = w.Write(frame(flagTrailer, trailer(st)))
}
