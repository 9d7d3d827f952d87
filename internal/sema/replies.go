package sema

import (
	"fmt"

	"weave/internal/diag"
	"weave/internal/model"
	"weave/internal/naming"
)

// buildReplyTable assigns dense IDs to reply handler identities in
// declaration order. A method with aliases serves every alias; an alias
// shared by several methods is one group whose filters must not overlap.
func buildReplyTable(r *declReporter, methods []*model.Method) *model.ReplyTable {
	t := &model.ReplyTable{}
	consts := map[string]*model.ReplyEntry{}
	for _, m := range methods {
		if m.Kind != model.KindReply {
			continue
		}
		for _, h := range m.ReplyIdentities() {
			e := t.Lookup(h)
			if e == nil {
				e = &model.ReplyEntry{Handler: h, Const: naming.Pascal(h) + "ReplyID", ID: uint64(len(t.Entries))}
				if prev := consts[e.Const]; prev != nil {
					r.errorf(diag.SemDuplicateDecl, m.Span, "reply handlers %s and %s both map to constant %s", prev.Handler, h, e.Const)
					continue
				}
				consts[e.Const] = e
				t.Entries = append(t.Entries, e)
			}
			for _, prev := range e.Methods {
				if !prev.ReplyOn.Overlaps(m.ReplyOn) {
					continue
				}
				diag.ReportError(r, diag.ConReplyFilterOverlap, m.Span,
					fmt.Sprintf("reply handler %s: %s (reply_on = %s) overlaps %s (reply_on = %s)",
						h, m.Name, m.ReplyOn, prev.Name, prev.ReplyOn)).
					WithNote(prev.Span, "conflicting registration").
					Emit()
			}
			e.Methods = append(e.Methods, m)
		}
	}
	return t
}
