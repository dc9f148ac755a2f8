//go:build !linux

package common

import "os"

func adviseSequential(_ *os.File) {}
