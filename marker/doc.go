// Package marker defines the attribute vocabulary used to classify candidate
// component types, their packages and their constructors. Markers are plain
// values declared in code at registration time; nothing in beankit parses
// source or struct tags to discover them.
package marker
