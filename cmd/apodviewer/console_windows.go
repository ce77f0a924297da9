//go:build windows

package main

import (
	"syscall"
)

const (
	swHide = 0
	swShow = 5
)

var (
	procGetConsoleWindow = syscall.NewLazyDLL("kernel32.dll").NewProc("GetConsoleWindow")
	procShowWindow       = syscall.NewLazyDLL("user32.dll").NewProc("ShowWindow")
)

// setConsoleVisible は、コンソールウィンドウの表示状態を切り替えます。
func setConsoleVisible(cmdShow uintptr) {
	hwnd, _, _ := procGetConsoleWindow.Call()
	if hwnd != 0 {
		procShowWindow.Call(hwnd, cmdShow)
	}
}

func hideConsole() { setConsoleVisible(swHide) }

func showConsole() { setConsoleVisible(swShow) }
