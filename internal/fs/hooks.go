package fs

import (
	"os"
	"time"
)

// Hooks used for testing (overridable)
var (
	open       = os.Open
	readFile   = os.ReadFile
	writeFile  = os.WriteFile
	lstat      = os.Lstat
	readDir    = os.ReadDir
	remove     = os.Remove
	removeAll  = os.RemoveAll
	rename     = os.Rename
	createTemp = os.CreateTemp
	mkdirAll   = os.MkdirAll
	chmod      = os.Chmod
	chtimes    = os.Chtimes
	symlink    = os.Symlink
	readlink   = os.Readlink
	isNotExist = os.IsNotExist
)

var exists = func(path string) bool {
	_, err := lstat(path)
	return err == nil
}

var IsDir = func(path string) bool {
	fi, err := lstat(path)
	return err == nil && fi.IsDir()
}

// getters and setters for test override
func GetOpen() func(string) (*os.File, error)    { return open }
func SetOpen(f func(string) (*os.File, error))   { open = f }
func GetReadFile() func(string) ([]byte, error)  { return readFile }
func SetReadFile(f func(string) ([]byte, error)) { readFile = f }
func GetWriteFile() func(string, []byte, os.FileMode) error {
	return writeFile
}
func SetWriteFile(f func(string, []byte, os.FileMode) error) {
	writeFile = f
}
func GetLstat() func(string) (os.FileInfo, error)      { return lstat }
func SetLstat(f func(string) (os.FileInfo, error))     { lstat = f }
func GetReadDir() func(string) ([]os.DirEntry, error)  { return readDir }
func SetReadDir(f func(string) ([]os.DirEntry, error)) { readDir = f }
func GetRemove() func(string) error                    { return remove }
func SetRemove(f func(string) error)                   { remove = f }
func GetRemoveAll() func(string) error                 { return removeAll }
func SetRemoveAll(f func(string) error)                { removeAll = f }
func GetRename() func(string, string) error            { return rename }
func SetRename(f func(string, string) error)           { rename = f }
func GetCreateTemp() func(string, string) (*os.File, error) {
	return createTemp
}
func SetCreateTemp(f func(string, string) (*os.File, error)) {
	createTemp = f
}
func GetMkdirAll() func(string, os.FileMode) error           { return mkdirAll }
func SetMkdirAll(f func(string, os.FileMode) error)          { mkdirAll = f }
func GetChmod() func(string, os.FileMode) error              { return chmod }
func SetChmod(f func(string, os.FileMode) error)             { chmod = f }
func GetChtimes() func(string, time.Time, time.Time) error   { return chtimes }
func SetChtimes(f func(string, time.Time, time.Time) error)  { chtimes = f }
func GetSymlink() func(string, string) error                 { return symlink }
func SetSymlink(f func(string, string) error)                { symlink = f }
func GetReadlink() func(string) (string, error)              { return readlink }
func SetReadlink(f func(string) (string, error))             { readlink = f }
func GetIsNotExist() func(error) bool                        { return isNotExist }
func SetIsNotExist(f func(error) bool)                       { isNotExist = f }
