// version.go
package version

import "fmt"

// AppName holds the name of the library, used as the User-Agent product token.
var AppName = "go-api-user-client"

// Version holds the current version of the library.
var Version = "0.1.0"

// GetAppName returns the name of the library
func GetAppName() string {
	return AppName
}

// GetVersion returns the current version of the library
func GetVersion() string {
	return Version
}

// GetUserAgentHeader returns the default User-Agent value sent with every request.
func GetUserAgentHeader() string {
	return fmt.Sprintf("%s/%s", AppName, Version)
}
