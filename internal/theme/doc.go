// Package theme provides colour themes for the terminal interface.
package theme
