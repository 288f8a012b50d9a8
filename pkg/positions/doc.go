// Package positions fills named layout slots ("module positions") with the
// modules the host assigns to them and with template features such as the
// logo, social icons, contact info and the main menu.
//
// Features are matched by position and ordered by priority (higher first,
// ties by registration order). A feature's load position decides whether it
// renders before or after the modules of the slot.
package positions
