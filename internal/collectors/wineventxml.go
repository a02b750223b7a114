package collectors

import (
	"strconv"
	"strings"

	"github.com/hermes-log/collector/internal/taxonomy"
	"github.com/hermes-log/collector/pkg/types"
)

// The rendered event XML is a large, loosely specified payload of which
// only five fixed-shape fields are ever needed, so the fields are pulled
// out by targeted substring search instead of a full XML parse.

// xmlElementText returns the text content of the first <name> element,
// tolerating attributes on the open tag (classic events render
// <EventID Qualifiers='16384'>…</EventID>).
func xmlElementText(xml, name string) string {
	marker := "<" + name
	search := xml
	for {
		start := strings.Index(search, marker)
		if start < 0 {
			return ""
		}
		rest := search[start+len(marker):]
		if rest == "" {
			return ""
		}
		// Skip longer element names sharing the prefix.
		if c := rest[0]; c != '>' && c != ' ' && c != '\t' && c != '\r' && c != '\n' {
			search = rest
			continue
		}
		tagEnd := strings.IndexByte(rest, '>')
		if tagEnd < 0 {
			return ""
		}
		if strings.HasSuffix(strings.TrimSpace(rest[:tagEnd]), "/") {
			return ""
		}
		body := rest[tagEnd+1:]
		end := strings.Index(body, "</"+name+">")
		if end < 0 {
			return ""
		}
		return strings.TrimSpace(body[:end])
	}
}

// xmlAttr returns the value of attr on the first <element …> occurrence.
func xmlAttr(xml, element, attr string) string {
	start := strings.Index(xml, "<"+element)
	if start < 0 {
		return ""
	}
	fragment := xml[start:]
	if end := strings.IndexByte(fragment, '>'); end >= 0 {
		fragment = fragment[:end]
	}

	for _, quote := range []string{"'", `"`} {
		marker := attr + "=" + quote
		if i := strings.Index(fragment, marker); i >= 0 {
			rest := fragment[i+len(marker):]
			if j := strings.Index(rest, quote); j >= 0 {
				return rest[:j]
			}
		}
	}
	return ""
}

// eventDataFallback assembles the "Data: name=value, …" substitute message
// from the event's data fields when the provider's message formatting is
// unavailable.
func eventDataFallback(xml string) string {
	var pairs []string
	rest := xml
	for {
		start := strings.Index(rest, "<Data")
		if start < 0 {
			break
		}
		rest = rest[start:]
		tagEnd := strings.IndexByte(rest, '>')
		if tagEnd < 0 {
			break
		}
		tag := rest[:tagEnd]
		if strings.HasSuffix(tag, "/") {
			rest = rest[tagEnd+1:]
			continue
		}

		name := ""
		for _, quote := range []string{"'", `"`} {
			if i := strings.Index(tag, "Name="+quote); i >= 0 {
				frag := tag[i+len("Name=")+1:]
				if j := strings.Index(frag, quote); j >= 0 {
					name = frag[:j]
				}
			}
		}

		body := rest[tagEnd+1:]
		closeIdx := strings.Index(body, "</Data>")
		if closeIdx < 0 {
			break
		}
		value := strings.TrimSpace(body[:closeIdx])
		if value != "" {
			if name != "" {
				pairs = append(pairs, name+"="+value)
			} else {
				pairs = append(pairs, value)
			}
		}
		rest = body[closeIdx:]
	}

	if len(pairs) == 0 {
		return ""
	}
	return "Data: " + strings.Join(pairs, ", ")
}

// normalizeWinEvent reduces a rendered event XML fragment plus an optional
// pre-formatted message to the shared record shape. fallbackChannel names
// the queried channel for events whose XML omits one.
func normalizeWinEvent(xml, formattedMessage, fallbackChannel string) types.NormalizedEvent {
	channel := pickFirst(xmlElementText(xml, "Channel"), fallbackChannel, "Application")
	provider := pickFirst(xmlAttr(xml, "Provider", "Name"), "Unknown Provider")

	var eventID *uint32
	if raw := xmlElementText(xml, "EventID"); raw != "" {
		if n, err := strconv.ParseUint(raw, 10, 32); err == nil {
			eventID = types.Uint32(uint32(n))
		}
	}

	severity := taxonomy.SeverityInformation
	if raw := xmlElementText(xml, "Level"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			severity = taxonomy.SeverityFromWindowsLevel(n)
		}
	}

	message := pickFirst(formattedMessage, eventDataFallback(xml))
	if strings.TrimSpace(message) == "" {
		message = "No event message."
	}

	event := types.NewEvent(types.OSWindows, channel,
		taxonomy.CategoryFromChannel(channel), provider, eventID, severity, message)

	if ts := xmlAttr(xml, "TimeCreated", "SystemTime"); ts != "" {
		event.Timestamp = ts
	}
	return event
}
