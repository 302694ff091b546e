package builtins

import (
	"github.com/funvibe/gcl/internal/interp"
	"github.com/funvibe/gcl/internal/value"
)

// Introspection returns builtins that describe the interpreter itself.
// Names lists the bindings of the calling frame.
func Introspection(in *interp.Interpreter) []*interp.Descriptor {
	return []*interp.Descriptor{
		fn("Help", value.TList, func(args []value.Value) (value.Value, error) {
			return texts(in.Help(text(args[0]))), nil
		}, arg("name", value.TText)),
		fn("Functions", value.TList, func([]value.Value) (value.Value, error) {
			return texts(in.Functions()), nil
		}),
		fn("Names", value.TList, func([]value.Value) (value.Value, error) {
			return texts(in.Names()), nil
		}),
		fn("GlobalNames", value.TList, func([]value.Value) (value.Value, error) {
			return texts(in.GlobalNames()), nil
		}),
		fn("UserFuncName", value.TText, func([]value.Value) (value.Value, error) {
			return value.NewText(in.UserFuncName()), nil
		}),
	}
}
