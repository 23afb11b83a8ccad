package main

// Version is the relman CLI version.
var Version = "0.1.0"
