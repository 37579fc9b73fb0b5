//go:build windows

package platform

import (
	"fmt"
	"unsafe"

	apperrors "apptrack/internal/infrastructure/errors"
	"apptrack/internal/types"

	"golang.org/x/sys/windows"
)

var (
	user32                   = windows.NewLazySystemDLL("user32.dll")
	psapi                    = windows.NewLazySystemDLL("psapi.dll")
	procGetCursorPos         = user32.NewProc("GetCursorPos")
	procWindowFromPoint      = user32.NewProc("WindowFromPoint")
	procGetAncestor          = user32.NewProc("GetAncestor")
	procGetWindowTextW       = user32.NewProc("GetWindowTextW")
	procGetWindowTextLengthW = user32.NewProc("GetWindowTextLengthW")
	procGetModuleFileNameExW = psapi.NewProc("GetModuleFileNameExW")
)

const gaRoot = 2

type point struct {
	X, Y int32
}

// WindowsDetector resolves the window under the mouse cursor
type WindowsDetector struct{}

// NewWindowsDetector creates a new Windows detector instance
func NewWindowsDetector() *WindowsDetector {
	return &WindowsDetector{}
}

// NewDetector creates the ActivityDetector for Windows
func NewDetector() (ActivityDetector, error) {
	return NewWindowsDetector(), nil
}

// GetCurrentActivity returns the app owning the window under the cursor, the
// title of its top-level window and the title of the window itself
func (w *WindowsDetector) GetCurrentActivity() (*types.ActivityInfo, error) {
	var pt point
	if ret, _, err := procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt))); ret == 0 {
		return nil, apperrors.NewDetectionError("windows", "GetCursorPos", err)
	}

	hwnd := windowFromPoint(pt)
	if hwnd == 0 {
		return nil, nil
	}

	var processID uint32
	if _, err := windows.GetWindowThreadProcessId(windows.HWND(hwnd), &processID); err != nil || processID == 0 {
		// desktop and system windows have no owning process we can open
		return nil, nil
	}

	appName, err := w.executableName(processID)
	if err != nil {
		return nil, apperrors.NewDetectionError("windows", "GetModuleFileNameExW", err)
	}

	root, _, _ := procGetAncestor.Call(hwnd, gaRoot)
	if root == 0 {
		root = hwnd
	}

	return &types.ActivityInfo{
		AppName:       appName,
		MainTitle:     windowText(root),
		DetailedTitle: windowText(hwnd),
	}, nil
}

func windowFromPoint(pt point) uintptr {
	// POINT is passed by value: one register on 64-bit, two stack slots on 32-bit
	if unsafe.Sizeof(uintptr(0)) == 8 {
		packed := uintptr(uint32(pt.X)) | uintptr(uint32(pt.Y))<<32
		hwnd, _, _ := procWindowFromPoint.Call(packed)
		return hwnd
	}
	hwnd, _, _ := procWindowFromPoint.Call(uintptr(pt.X), uintptr(pt.Y))
	return hwnd
}

func (w *WindowsDetector) executableName(processID uint32) (string, error) {
	handle, err := windows.OpenProcess(windows.PROCESS_QUERY_INFORMATION|windows.PROCESS_VM_READ, false, processID)
	if err != nil {
		return fmt.Sprintf("[Access Denied PID %d]", processID), nil
	}
	defer windows.CloseHandle(handle)

	var buffer [windows.MAX_PATH]uint16
	ret, _, callErr := procGetModuleFileNameExW.Call(uintptr(handle), 0, uintptr(unsafe.Pointer(&buffer[0])), windows.MAX_PATH)
	if ret == 0 {
		return "", callErr
	}

	name := appNameFromPath(windows.UTF16ToString(buffer[:ret]))
	if name == "" {
		return fmt.Sprintf("[Unknown Path PID %d]", processID), nil
	}
	return name, nil
}

func windowText(hwnd uintptr) string {
	length, _, _ := procGetWindowTextLengthW.Call(hwnd)
	if length == 0 {
		return ""
	}
	buffer := make([]uint16, length+1)
	ret, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buffer[0])), uintptr(len(buffer)))
	if ret == 0 {
		return ""
	}
	return windows.UTF16ToString(buffer[:ret])
}
