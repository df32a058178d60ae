package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// Callback prefixes. Every inline button carries `prefix:arg:arg...` so the
// dispatcher can route on the first segment alone.
const (
	cbCatalog   = "cat"  // cat:<parentID>:<page>        browse a level (0 = roots)
	cbProduct   = "prd"  // prd:<categoryID>             product card
	cbAddCart   = "add"  // add:<categoryID>:<qty>       put units in the cart
	cbCart      = "crt"  // crt                          show the cart
	cbCartDrop  = "cdel" // cdel:<cartItemID>            remove a cart line
	cbCheckout  = "buy"  // buy                          settle the cart
	cbLocation  = "loc"  // loc:<locationID>             pick a delivery location
	cbLocPage   = "locp" // locp:<parentID>:<page>       browse locations
	cbProfile   = "me"   // me                           profile view
	cbHistory   = "hist" // hist:<page>                  purchase history
	cbAdmin     = "adm"  // adm:<action>:<arg>...        admin menu actions
	cbAdminCat  = "acat" // acat:<parentID>:<page>       admin catalog browse
	cbAdminNode = "anod" // anod:<categoryID>            admin node menu
)

// Callback is one decoded button payload.
type Callback struct {
	Prefix string
	Args   []string
}

// pack encodes a button payload. Telegram caps callback data at 64 bytes,
// which ids and page numbers stay well under.
func pack(prefix string, args ...interface{}) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, prefix)
	for _, a := range args {
		parts = append(parts, fmt.Sprint(a))
	}
	return strings.Join(parts, ":")
}

// parseCallback decodes button data produced by pack.
func parseCallback(data string) (Callback, error) {
	if data == "" {
		return Callback{}, fmt.Errorf("empty callback data")
	}
	parts := strings.Split(data, ":")
	return Callback{Prefix: parts[0], Args: parts[1:]}, nil
}

// Uint reads argument i as an id. Missing or malformed arguments read as 0,
// which every flow treats as "root" or "first page".
func (c Callback) Uint(i int) uint {
	if i >= len(c.Args) {
		return 0
	}
	n, err := strconv.ParseUint(c.Args[i], 10, 32)
	if err != nil {
		return 0
	}
	return uint(n)
}

// Int reads argument i as a plain number.
func (c Callback) Int(i int) int {
	if i >= len(c.Args) {
		return 0
	}
	n, err := strconv.Atoi(c.Args[i])
	if err != nil {
		return 0
	}
	return n
}

// Str reads argument i, empty when absent.
func (c Callback) Str(i int) string {
	if i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

// optID maps the 0 sentinel back to nil for tree roots.
func optID(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}
