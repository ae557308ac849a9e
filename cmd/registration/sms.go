package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"confreg/internal/registrations/notifier"
	"confreg/pkg/config"
)

var (
	smsPhone string
	smsName  string
)

var smsTestCmd = &cobra.Command{
	Use:   "sms-test",
	Short: "Send one confirmation SMS to check the mNotify setup",
	Long: `Prints the SMS configuration and the message that would be sent, then
sends it through mNotify.

Example:
  registration sms-test --phone 0241234567 --name "Ama Boateng"`,
	RunE: runSMSTest,
}

func init() {
	smsTestCmd.Flags().StringVar(&smsPhone, "phone", "", "recipient phone number")
	smsTestCmd.Flags().StringVar(&smsName, "name", "Test User", "attendee name used in the greeting")
	_ = smsTestCmd.MarkFlagRequired("phone")
}

func runSMSTest(cmd *cobra.Command, args []string) error {
	cfg := config.Load(ServiceName)
	smsNotifier := notifier.NewSMSNotifier(cfg)
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "mNotify configuration")
	gateway := cfg.Client.MNotify
	fmt.Fprintf(out, "  endpoint:     %s\n", gateway.Endpoint())
	fmt.Fprintf(out, "  sender id:    %s\n", gateway.Sender())
	fmt.Fprintf(out, "  api key set:  %t\n", gateway.Ready())
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Message preview")
	fmt.Fprintln(out, notifier.ConfirmationMessage(smsName, cfg.ConferenceName))

	if !smsNotifier.Ready() {
		return errors.New(notifier.MsgNotInitialized)
	}

	ctx, cancel := withTimeout(cmd.Context(), cfg.SMSTimeout+time.Second)
	defer cancel()

	sent, message := smsNotifier.SendConfirmation(ctx, smsPhone, smsName)
	fmt.Fprintln(out, message)
	if !sent {
		return errors.New("sms not sent")
	}
	return nil
}
