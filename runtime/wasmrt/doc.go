// Package wasmrt is the runtime imported by code that weave generates.
//
// It models the host-facing side of a contract only as far as the
// generated schemas, dispatchers, proxies and entry points need it: wire
// primitives (Addr, Binary, Uint128, Coin), responses and outgoing
// messages, the per-kind handler contexts and the externally tagged JSON
// codec used by every generated union.
package wasmrt
