package healthquery

var Version = "v0.0.1"
