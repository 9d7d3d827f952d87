package model

// Kind is the lifecycle phase a handler method is tagged with.
type Kind uint8

const (
	KindInstantiate Kind = iota
	KindExec
	KindQuery
	KindSudo
	KindMigrate
	KindReply

	kindCount
)

// Kinds lists every kind in emission order.
var Kinds = [...]Kind{KindInstantiate, KindExec, KindQuery, KindSudo, KindMigrate, KindReply}

// MsgKinds are the kinds that get a tagged union; reply is routed by ID.
var MsgKinds = [...]Kind{KindInstantiate, KindExec, KindQuery, KindSudo, KindMigrate}

var kindTags = [kindCount]string{"instantiate", "exec", "query", "sudo", "migrate", "reply"}

// String returns the attribute tag (`exec`, `query`, ...).
func (k Kind) String() string {
	if k >= kindCount {
		return "unknown"
	}
	return kindTags[k]
}

// Wire is the name used by the host entry point and the schema document.
func (k Kind) Wire() string {
	if k == KindExec {
		return "execute"
	}
	return k.String()
}

// Title is the Go-facing name used in generated identifiers.
func (k Kind) Title() string {
	switch k {
	case KindInstantiate:
		return "Instantiate"
	case KindExec:
		return "Exec"
	case KindQuery:
		return "Query"
	case KindSudo:
		return "Sudo"
	case KindMigrate:
		return "Migrate"
	case KindReply:
		return "Reply"
	}
	return "Unknown"
}

// EntryName is the host entry point method name for the kind.
func (k Kind) EntryName() string {
	if k == KindExec {
		return "Execute"
	}
	return k.Title()
}

// ContextType is the builtin context type the first handler parameter must have.
func (k Kind) ContextType() string {
	return k.Title() + "Ctx"
}

// KindFromTag maps an attribute name onto a kind.
func KindFromTag(tag string) (Kind, bool) {
	for i, t := range kindTags {
		if t == tag {
			return Kind(i), true
		}
	}
	return 0, false
}

// KindFromContext maps a context type name (`ExecCtx`) onto its kind.
func KindFromContext(name string) (Kind, bool) {
	for _, k := range Kinds {
		if k.ContextType() == name {
			return k, true
		}
	}
	return 0, false
}

// ReplyFilter is the completion condition a reply method subscribes to.
type ReplyFilter uint8

const (
	ReplyAlways ReplyFilter = iota
	ReplySuccess
	ReplyFailure
)

func (f ReplyFilter) String() string {
	switch f {
	case ReplySuccess:
		return "success"
	case ReplyFailure:
		return "failure"
	default:
		return "always"
	}
}

// Overlaps reports whether two filters claim a common completion outcome.
func (f ReplyFilter) Overlaps(other ReplyFilter) bool {
	return f == ReplyAlways || other == ReplyAlways || f == other
}

// Matches reports whether the filter accepts a reply with the given outcome.
func (f ReplyFilter) Matches(ok bool) bool {
	switch f {
	case ReplySuccess:
		return ok
	case ReplyFailure:
		return !ok
	default:
		return true
	}
}

// ParseReplyFilter parses the value of `reply_on = ...`.
func ParseReplyFilter(s string) (ReplyFilter, bool) {
	switch s {
	case "always":
		return ReplyAlways, true
	case "success":
		return ReplySuccess, true
	case "failure":
		return ReplyFailure, true
	}
	return 0, false
}
