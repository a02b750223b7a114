//go:build windows

package collectors

import (
	"fmt"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Thin bindings over wevtapi.dll, the structured event-query API. Handles
// are plain uintptrs closed with EvtClose; every path that opens one must
// release it.

var (
	modwevtapi = windows.NewLazySystemDLL("wevtapi.dll")

	procEvtQuery                 = modwevtapi.NewProc("EvtQuery")
	procEvtNext                  = modwevtapi.NewProc("EvtNext")
	procEvtRender                = modwevtapi.NewProc("EvtRender")
	procEvtClose                 = modwevtapi.NewProc("EvtClose")
	procEvtOpenPublisherMetadata = modwevtapi.NewProc("EvtOpenPublisherMetadata")
	procEvtFormatMessage         = modwevtapi.NewProc("EvtFormatMessage")
)

const (
	evtQueryChannelPath      = 0x1
	evtQueryReverseDirection = 0x200

	evtRenderEventXml = 1

	evtFormatMessageEvent = 1
)

type evtHandle uintptr

func evtQuery(channel, query string) (evtHandle, error) {
	channelPtr, err := windows.UTF16PtrFromString(channel)
	if err != nil {
		return 0, err
	}
	queryPtr, err := windows.UTF16PtrFromString(query)
	if err != nil {
		return 0, err
	}

	handle, _, lastErr := procEvtQuery.Call(
		0, // local session
		uintptr(unsafe.Pointer(channelPtr)),
		uintptr(unsafe.Pointer(queryPtr)),
		uintptr(evtQueryChannelPath|evtQueryReverseDirection),
	)
	if handle == 0 {
		return 0, fmt.Errorf("EvtQuery %s: %w", channel, lastErr)
	}
	return evtHandle(handle), nil
}

// evtNext pulls up to len(events) handles from the result set. done is true
// once the result set is exhausted.
func evtNext(resultSet evtHandle, events []evtHandle) (n int, done bool, err error) {
	if len(events) == 0 {
		return 0, true, nil
	}

	var returned uint32
	r, _, lastErr := procEvtNext.Call(
		uintptr(resultSet),
		uintptr(len(events)),
		uintptr(unsafe.Pointer(&events[0])),
		windows.INFINITE,
		0,
		uintptr(unsafe.Pointer(&returned)),
	)
	if r == 0 {
		if lastErr == windows.ERROR_NO_MORE_ITEMS {
			return 0, true, nil
		}
		return 0, true, fmt.Errorf("EvtNext: %w", lastErr)
	}
	return int(returned), false, nil
}

func evtClose(h evtHandle) {
	if h != 0 {
		procEvtClose.Call(uintptr(h))
	}
}

// evtRenderXML renders an event handle to its XML representation.
func evtRenderXML(event evtHandle) (string, error) {
	var bufferUsed, propertyCount uint32

	r, _, lastErr := procEvtRender.Call(
		0,
		uintptr(event),
		evtRenderEventXml,
		0,
		0,
		uintptr(unsafe.Pointer(&bufferUsed)),
		uintptr(unsafe.Pointer(&propertyCount)),
	)
	if r == 0 && lastErr != windows.ERROR_INSUFFICIENT_BUFFER {
		return "", fmt.Errorf("EvtRender size probe: %w", lastErr)
	}
	if bufferUsed == 0 {
		return "", nil
	}

	buf := make([]uint16, bufferUsed/2+1)
	r, _, lastErr = procEvtRender.Call(
		0,
		uintptr(event),
		evtRenderEventXml,
		uintptr(bufferUsed),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(unsafe.Pointer(&bufferUsed)),
		uintptr(unsafe.Pointer(&propertyCount)),
	)
	if r == 0 {
		return "", fmt.Errorf("EvtRender: %w", lastErr)
	}
	return windows.UTF16ToString(buf), nil
}

// evtFormatMessage renders the provider's human-readable message for an
// event. Opening the per-provider metadata fails for uninstalled providers;
// the caller falls back to the event data fields.
func evtFormatMessage(provider string, event evtHandle) (string, error) {
	providerPtr, err := windows.UTF16PtrFromString(provider)
	if err != nil {
		return "", err
	}

	metadata, _, lastErr := procEvtOpenPublisherMetadata.Call(
		0,
		uintptr(unsafe.Pointer(providerPtr)),
		0,
		0,
		0,
	)
	if metadata == 0 {
		return "", fmt.Errorf("EvtOpenPublisherMetadata %s: %w", provider, lastErr)
	}
	defer evtClose(evtHandle(metadata))

	var bufferUsed uint32
	r, _, lastErr := procEvtFormatMessage.Call(
		metadata,
		uintptr(event),
		0,
		0,
		0,
		evtFormatMessageEvent,
		0,
		0,
		uintptr(unsafe.Pointer(&bufferUsed)),
	)
	if r == 0 && lastErr != windows.ERROR_INSUFFICIENT_BUFFER {
		return "", fmt.Errorf("EvtFormatMessage size probe: %w", lastErr)
	}
	if bufferUsed == 0 {
		return "", nil
	}

	buf := make([]uint16, bufferUsed)
	r, _, lastErr = procEvtFormatMessage.Call(
		metadata,
		uintptr(event),
		0,
		0,
		0,
		evtFormatMessageEvent,
		uintptr(len(buf)),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(unsafe.Pointer(&bufferUsed)),
	)
	if r == 0 {
		return "", fmt.Errorf("EvtFormatMessage: %w", lastErr)
	}
	return string(utf16.Decode(buf[:bufferUsed-1])), nil
}
