// Package device holds the facility devices that consume power or take part
// in the breach protocol: doors, cameras, turrets, alarm panels, trigger
// volumes, light groups and terminals.
//
// Devices receive the breach latch through their constructor. Start registers
// the device's breach signal with the latch and its reaction as a latch
// listener; after reacting, a device drops both subscriptions.
package device
