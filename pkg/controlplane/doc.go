/*
Package controlplane exposes the engine's local control socket (spec §6: "an
optional local socket API exposes reload, shutdown, status, and tap") over
google.golang.org/grpc, grounded in the teacher's pkg/api gRPC server — but over a
loopback/UNIX-domain socket instead of mTLS, and with a JSON wire codec instead of
protoc-generated messages.

The teacher's api/proto package (and its protoc-gen-go output) was not part of the
retrieved reference material, and this module's build never invokes protoc or the Go
toolchain. Hand-authoring protoc-gen-go's generated code — raw FileDescriptorProto
bytes, protoreflect message state, oneof wrappers — without ever running protoc
against it would produce code nobody could tell was correct. Instead this package
registers a small google.golang.org/grpc.ServiceDesc directly (the same shape
protoc-gen-go-grpc emits) and pairs it with a JSON codec registered through
google.golang.org/grpc/encoding, so every RPC is still an ordinary gRPC call —
unary Reload/Shutdown/Status and a server-streaming Tap — just carrying plain Go
structs instead of generated protobuf types. See DESIGN.md for the full rationale.
*/
package controlplane
