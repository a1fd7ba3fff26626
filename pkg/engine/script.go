package engine

import "strings"

// rewriteScript turns vehicle DSL source into something zygomys reads the
// same way a user does:
//
//	:chord        -> "__kw_chord"    keyword literal
//	root-chord    -> root_chord      hyphen inside a name
//	;; note       -> // note         line comment
//
// Text inside "..." and `...` is copied as written. A hyphen starting a
// number or standing alone stays the minus operator.
func rewriteScript(source string) string {
	r := scriptRewriter{src: source}
	r.out.Grow(len(source) + len(source)/4)
	for r.pos < len(r.src) {
		switch c := r.src[r.pos]; {
		case c == '"':
			r.literal('"', true)
		case c == '`':
			r.literal('`', false)
		case c == ';':
			r.comment()
		case c == ':' && r.keyword():
		case c == '-' && r.nameHyphen():
			r.out.WriteByte('_')
			r.pos++
		default:
			r.out.WriteByte(c)
			r.pos++
		}
	}
	return r.out.String()
}

type scriptRewriter struct {
	src string
	pos int
	out strings.Builder
}

// literal copies a delimited string through its closing delimiter, or to
// the end of an unterminated one.
func (r *scriptRewriter) literal(delim byte, escapes bool) {
	end := r.pos + 1
	for end < len(r.src) && r.src[end] != delim {
		if escapes && r.src[end] == '\\' {
			end++
		}
		end++
	}
	end = min(end+1, len(r.src))
	r.out.WriteString(r.src[r.pos:end])
	r.pos = end
}

// comment collapses a run of semicolons into // and copies the rest of
// the line.
func (r *scriptRewriter) comment() {
	for r.pos < len(r.src) && r.src[r.pos] == ';' {
		r.pos++
	}
	end := strings.IndexByte(r.src[r.pos:], '\n')
	if end < 0 {
		end = len(r.src) - r.pos
	}
	r.out.WriteString("//")
	r.out.WriteString(r.src[r.pos : r.pos+end])
	r.pos += end
}

// keyword rewrites :name at pos as a quoted keyword literal. It reports
// false, consuming nothing, when the colon starts something else; := is
// copied whole.
func (r *scriptRewriter) keyword() bool {
	if r.pos+1 >= len(r.src) {
		return false
	}
	next := r.src[r.pos+1]
	if next == '=' {
		r.out.WriteString(":=")
		r.pos += 2
		return true
	}
	if !isLetter(next) {
		return false
	}
	end := r.pos + 1
	for end < len(r.src) && isKWChar(r.src[end]) {
		end++
	}
	r.out.WriteByte('"')
	r.out.WriteString(kwPrefix)
	r.out.WriteString(r.src[r.pos+1 : end])
	r.out.WriteByte('"')
	r.pos = end
	return true
}

// nameHyphen reports whether the hyphen at pos joins two parts of a
// name, as in root-chord.
func (r *scriptRewriter) nameHyphen() bool {
	return r.pos > 0 && r.pos+1 < len(r.src) &&
		isIdentChar(r.src[r.pos-1]) && isLetter(r.src[r.pos+1])
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}
