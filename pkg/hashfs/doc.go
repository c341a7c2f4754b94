// Package hashfs provides the content-addressed block store.
//
// Files are split into chunks of a fixed block size (the last chunk may be shorter).
// Every chunk is stored under its content key.
//
// A link object lists the keys of the chunks of a file, in order, and is itself
// stored under the key of its serialized form: this key identifies the file.
// Chunks are leaves and reference nothing.
//
//	link object {"Links":[{"Hash":"zdj7W...","Size":262144},{"Hash":"zdj7W...","Size":1024}]}
//	   ├── chunk zdj7W... (262144 bytes)
//	   └── chunk zdj7W... (1024 bytes)
//
// Objects are laid out in sharded directories, using the leading characters of the key
// (after the constant prefix of the key scheme), e.g. with 2 levels:
//
//	<root>/Wm/99/zdj7Wm99FQsJ7a4udnx36ZQNTy7h4Pao3XmRSfjo4sAbt9g74
//
// Writes are atomic: objects are written to a temporary location first, then renamed
// under their final key.
//
// Each store keeps an append-only log of the keys it has newly written. The log
// is consumed by push operations.
package hashfs
