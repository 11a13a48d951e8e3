// Package modem drives the control node of an external modem attached over
// HSIC/USB, as found on Exynos phones with a Qualcomm baseband.
//
// Device issues the three control ioctls used during boot: wake, normal boot
// done and wait for error. After wake, WaitReady polls until the modem's
// serial node appears.
package modem
