package encode

import "fmt"

// ImplStubName builds the zero-argument marker stub name for a method of an
// impl block in an external mirror. The double-underscore combination keeps
// generated stubs out of the way of ordinary identifiers while staying
// addressable from forwarded call sites.
func ImplStubName(typeName, fnName string) string {
	return fmt.Sprintf("%s__impl__%s__", typeName, fnName)
}
