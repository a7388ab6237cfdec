package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// Callback actions. Telegram caps callback data at 64 bytes, so payloads
// carry ids and indexes only; everything else lives in per-user state.
const (
	cbMenu      = "menu"
	cbFilter    = "flt"
	cbSection   = "sec"
	cbItem      = "item"
	cbSize      = "size"
	cbExtra     = "ext"
	cbAdd       = "add"
	cbDec       = "dec"
	cbCart      = "cart"
	cbLineInc   = "l+"
	cbLineDec   = "l-"
	cbLineDel   = "lx"
	cbCheckout  = "co"
	cbUsePrev   = "co_prev"
	cbNewInfo   = "co_new"
	cbSubmit    = "co_submit"
	cbCancel    = "co_cancel"
	cbNoop      = "noop"
	cbAdmRemove = "a_rm"
	cbAdmClear  = "a_clear"
	cbAdmCat    = "a_cat"
)

type callback struct {
	Action string
	Args   []string
}

func cb(action string, args ...any) string {
	if len(args) == 0 {
		return action
	}
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, action)
	for _, a := range args {
		parts = append(parts, fmt.Sprint(a))
	}
	return strings.Join(parts, ":")
}

func parseCallback(data string) callback {
	parts := strings.Split(data, ":")
	return callback{Action: parts[0], Args: parts[1:]}
}

func (c callback) Int(i int) (int64, bool) {
	if i >= len(c.Args) {
		return 0, false
	}
	v, err := strconv.ParseInt(c.Args[i], 10, 64)
	return v, err == nil
}

func (c callback) Arg(i int) string {
	if i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}
