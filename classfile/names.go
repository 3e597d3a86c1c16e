package classfile

import "strings"

// InternalToSourceName turns java/lang/String into java.lang.String.
// Nested class separators are left alone.
func InternalToSourceName(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

func SourceToInternalName(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}

// PackageOf returns the package part of an internal class name, or "" for
// the unnamed package.
func PackageOf(internalName string) string {
	i := strings.LastIndexByte(internalName, '/')
	if i < 0 {
		return ""
	}
	return internalName[:i]
}
