// Package config loads optimizer policies from CUE files and the
// environment.
//
// A policy file is plain CUE checked against the embedded #Policy
// definition:
//
//	rules: {
//		"top-n":         "off"
//		"implicit-join": "on"
//	}
//	params: {
//		topNLimit: 200
//		placeBGPs: false
//	}
//
// Rules not listed keep their built-in default. Unknown fields, unknown
// rule names and settings other than "on", "off" and "default" are
// reported as *LoadError with the CUE position of the offending value.
//
// Environment variables are applied after the file:
//
//	QOPT_TOPN_LIMIT         top-n window limit
//	QOPT_PLACE_BGPS         split patterns during filter placement
//	QOPT_AGGRESSIVE_INLINE  inline non-constant sort keys
//	QOPT_ASSUME_PROJECTED   eliminate assignments at the plan root
//	QOPT_DISABLE            comma-separated rule names forced off
package config
