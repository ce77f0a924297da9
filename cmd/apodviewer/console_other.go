//go:build !windows

package main

// Windows以外ではコンソールウィンドウを持たないため何もしません。
func hideConsole() {}

func showConsole() {}
