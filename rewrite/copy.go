// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rewrite

import "github.com/pycdown/pycdown/marshalformat"

// deepCopyCode clones code and everything it transitively owns, so the
// rewriter never observes, let alone mutates, the caller's input.
func deepCopyCode(code *marshalformat.Code) *marshalformat.Code {
	if code == nil {
		return nil
	}
	out := *code
	out.Bytecode = append([]byte(nil), code.Bytecode...)
	out.Names = append([]string(nil), code.Names...)
	out.VarNames = append([]string(nil), code.VarNames...)
	out.FreeVars = append([]string(nil), code.FreeVars...)
	out.CellVars = append([]string(nil), code.CellVars...)
	out.LineNoTable = append([]byte(nil), code.LineNoTable...)

	out.Consts = make([]marshalformat.Const, len(code.Consts))
	for i, c := range code.Consts {
		out.Consts[i] = deepCopyConst(c)
	}
	return &out
}

func deepCopyConst(c marshalformat.Const) marshalformat.Const {
	switch v := c.(type) {
	case marshalformat.ConstTuple:
		cp := make(marshalformat.ConstTuple, len(v))
		for i, item := range v {
			cp[i] = deepCopyConst(item)
		}
		return cp
	case marshalformat.ConstBytes:
		return append(marshalformat.ConstBytes(nil), v...)
	case *marshalformat.Code:
		return deepCopyCode(v)
	default:
		// ConstNone, ConstBool, ConstInt, ConstStr are all immutable
		// value types; returning them as-is is already a copy.
		return c
	}
}
