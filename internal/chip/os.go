package chip

import "runtime"

var isDarwin = runtime.GOOS == "darwin"
