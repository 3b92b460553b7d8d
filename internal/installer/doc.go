// Package installer installs and verifies the LunarG Vulkan SDK.
//
// # Platform dispatch
//
// The Installer picks one Strategy per process from the detected
// platform.Kind:
//   - Linux, macOS: extract the SDK tar.gz into the destination, verify with
//     <path>/bin/vulkaninfo
//   - Windows: run the native VulkanSDK installer unattended, extract the
//     Vulkan runtime zip into <destination>/runtime, verify with
//     <path>/bin/vulkaninfoSDK.exe and the presence of
//     <path>/runtime/vulkan-1.dll
//   - anything else: every step records an unsupported platform failure
//
// # Failure reporting
//
// Install and Verify never return Go errors. Each failing step records a
// fatal report.Failure into the *report.Outcome passed by the caller and the
// sequence carries on, so later steps still produce logs. Return values
// degrade instead: an empty install path, or a nonzero result code.
//
// # Usage
//
//	inst, err := installer.New(installer.Config{Platform: info})
//	if err != nil {
//	    return err
//	}
//	out := report.NewOutcome(annotator)
//	res := inst.Install(ctx, installer.InstallRequest{
//	    SDKPayload:  "/tmp/vulkansdk-linux-x86_64-1.3.290.0.tar.gz",
//	    Destination: "/opt/vulkan",
//	}, out)
//	v := inst.Verify(ctx, ptr.To(res.Path), out)
package installer
