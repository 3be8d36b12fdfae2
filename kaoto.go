package kaoto

// Name identifies the step tree tools in logs
const Name = "kaoto-steps"

// Version is overridden at build time
var Version = "dev"
