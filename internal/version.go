package internal

// Version is the polyglot release version
const Version = "0.3.0"
