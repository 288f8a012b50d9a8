package layout

import (
	"fmt"
	"strings"
)

// DeviceClass returns the Bootstrap display utilities hiding an element on
// the selected breakpoints. Each hidden breakpoint removes the "d-{bp}-block"
// left by the previous one before adding its own pair.
func (v Visibility) DeviceClass() string {
	class := ""
	if v.HideOnPhone {
		class = "d-none d-sm-block"
	}
	if v.HideOnLargePhone {
		class = reshapeDeviceClass("sm", class) + " d-sm-none d-md-block"
	}
	if v.HideOnTablet {
		class = reshapeDeviceClass("md", class) + " d-md-none d-lg-block"
	}
	if v.HideOnSmallDesktop {
		class = reshapeDeviceClass("lg", class) + " d-lg-none d-xl-block"
	}
	if v.HideOnDesktop {
		class = reshapeDeviceClass("xl", class) + " d-xl-none"
	}
	return strings.Join(strings.Fields(class), " ")
}

func reshapeDeviceClass(device, class string) string {
	class = strings.ReplaceAll(class, "d-"+device+"-block", "")
	return strings.TrimSpace(class)
}

// Classes returns the class attribute value of a section wrapper.
func (s RowSettings) Classes() string {
	return joinClasses(s.CustomClass, s.DeviceClass())
}

// Declarations builds the CSS rules for a section with the given element id.
// baseURL prefixes relative background images.
func (s RowSettings) Declarations(id, baseURL string) []string {
	var b strings.Builder
	if s.BackgroundImage != "" {
		fmt.Fprintf(&b, `background-image:url("%s");`, joinURL(baseURL, s.BackgroundImage))
		writeDecl(&b, "background-repeat", s.BackgroundRepeat)
		writeDecl(&b, "background-size", s.BackgroundSize)
		writeDecl(&b, "background-attachment", s.BackgroundAttachment)
		writeDecl(&b, "background-position", s.BackgroundPosition)
	}
	writeDecl(&b, "background-color", s.BackgroundColor)
	writeDecl(&b, "color", s.Color)
	writeDecl(&b, "padding", s.Padding)
	writeDecl(&b, "margin", s.Margin)

	var out []string
	if b.Len() > 0 {
		out = append(out, "#"+id+"{ "+b.String()+" }")
	}
	if s.LinkColor != "" {
		out = append(out, "#"+id+" a{color:"+s.LinkColor+";}")
	}
	if s.LinkHoverColor != "" {
		out = append(out, "#"+id+" a:hover{color:"+s.LinkHoverColor+";}")
	}
	return out
}

func writeDecl(b *strings.Builder, property, value string) {
	if value == "" {
		return
	}
	b.WriteString(property)
	b.WriteByte(':')
	b.WriteString(value)
	b.WriteByte(';')
}

func joinURL(base, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "//") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

func joinClasses(parts ...string) string {
	var fields []string
	for _, part := range parts {
		fields = append(fields, strings.Fields(part)...)
	}
	return strings.Join(fields, " ")
}
