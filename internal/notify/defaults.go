package notify

// Template pairs a subject line with a body. Subjects and bodies both run
// through Interpolate before sending.
type Template struct {
	Subject string
	Body    string
	HTML    bool
}

// defaultTemplates are the built-in fallbacks, used whenever the template
// store has no override for a kind.
var defaultTemplates = map[Kind]Template{
	KindEligibilityForm: {
		Subject: "Your Application to {company_name}: Let's Explore a Fit",
		HTML:    true,
		Body: `<!DOCTYPE html>
<html>
<body style="margin:0; padding:0; background-color:#faf5f7; font-family:'Segoe UI', Tahoma, sans-serif;">
  <table role="presentation" width="100%" cellpadding="0" cellspacing="0" style="padding:40px 16px;">
    <tr><td align="center">
      <table role="presentation" width="600" cellpadding="0" cellspacing="0" style="background-color:#ffffff; border-radius:12px; max-width:600px;">
        <tr><td style="background-color:#c30361; padding:28px 36px;">
          <h1 style="margin:0; color:#ffffff; font-size:22px;">{company_name}</h1>
        </td></tr>
        <tr><td style="padding:36px;">
          <p style="margin:0 0 16px;">Hi {first_name},</p>
          <p style="margin:0 0 16px;">Thank you for applying for the <strong>{role_title}</strong> position. Before we move forward, we have a short eligibility questionnaire for you.</p>
          <p style="margin:24px 0;" align="center">
            <a href="{form_url}" target="_blank" style="display:inline-block; background-color:#c30361; color:#ffffff; text-decoration:none; font-size:16px; font-weight:700; padding:16px 40px; border-radius:8px;">Complete the questionnaire</a>
          </p>
          <p style="margin:0;">Best,<br>{company_name} Recruiting</p>
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`,
	},

	KindInterviewInvite: {
		Subject: "You're Invited - AI Interview with {company_name}",
		HTML:    true,
		Body: `<!DOCTYPE html>
<html>
<body style="margin:0; padding:0; background-color:#faf5f7; font-family:'Segoe UI', Tahoma, sans-serif;">
  <table role="presentation" width="100%" cellpadding="0" cellspacing="0" style="padding:40px 16px;">
    <tr><td align="center">
      <table role="presentation" width="600" cellpadding="0" cellspacing="0" style="background-color:#ffffff; border-radius:12px; max-width:600px;">
        <tr><td style="background-color:#c30361; padding:28px 36px;">
          <h1 style="margin:0; color:#ffffff; font-size:22px;">{company_name}</h1>
        </td></tr>
        <tr><td style="padding:36px;">
          <p style="margin:0 0 16px;">Hi {first_name},</p>
          <p style="margin:0 0 16px;">Great news! We'd like to invite you to an AI interview. It takes about 15&ndash;20 minutes and you can complete it whenever suits you.</p>
          <p style="margin:24px 0;" align="center">
            <a href="{interview_link}" target="_blank" style="display:inline-block; background-color:#c30361; color:#ffffff; text-decoration:none; font-size:16px; font-weight:700; padding:16px 40px; border-radius:8px;">Start your interview</a>
          </p>
          <p style="margin:0;">Best,<br>{company_name} Recruiting</p>
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`,
	},

	KindRound2Invite: {
		Subject: "Round 2: Technical Interview for {job_title} at {company_name}",
		HTML:    true,
		Body: `<!DOCTYPE html>
<html>
<body style="margin:0; padding:0; background-color:#faf5f7; font-family:'Segoe UI', Tahoma, sans-serif;">
  <table role="presentation" width="100%" cellpadding="0" cellspacing="0" style="padding:40px 16px;">
    <tr><td align="center">
      <table role="presentation" width="600" cellpadding="0" cellspacing="0" style="background-color:#ffffff; border-radius:12px; max-width:600px;">
        <tr><td style="background-color:#c30361; padding:28px 36px;">
          <h1 style="margin:0; color:#ffffff; font-size:22px;">{company_name}</h1>
        </td></tr>
        <tr><td style="padding:36px;">
          <p style="margin:0 0 16px;">Hi {first_name},</p>
          <p style="margin:0 0 16px;">Congratulations on advancing! The next step for the <strong>{job_title}</strong> role is a technical interview. Expect it to take 30&ndash;40 minutes.</p>
          <p style="margin:24px 0;" align="center">
            <a href="{round2_link}" target="_blank" style="display:inline-block; background-color:#c30361; color:#ffffff; text-decoration:none; font-size:16px; font-weight:700; padding:16px 40px; border-radius:8px;">Start round 2</a>
          </p>
          <p style="margin:0;">Best,<br>{company_name} Recruiting</p>
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`,
	},

	KindReminder: {
		Subject: "Quick reminder: Your {company_name} application",
		HTML:    true,
		Body: `<!DOCTYPE html>
<html>
<body style="margin:0; padding:0; background-color:#faf5f7; font-family:'Segoe UI', Tahoma, sans-serif;">
  <table role="presentation" width="100%" cellpadding="0" cellspacing="0" style="padding:40px 16px;">
    <tr><td align="center">
      <table role="presentation" width="600" cellpadding="0" cellspacing="0" style="background-color:#ffffff; border-radius:12px; max-width:600px;">
        <tr><td style="background-color:#c30361; padding:28px 36px;">
          <h1 style="margin:0; color:#ffffff; font-size:22px;">{company_name}</h1>
        </td></tr>
        <tr><td style="padding:36px;">
          <p style="margin:0 0 16px;">Hi {first_name},</p>
          <p style="margin:0 0 16px;">Just a friendly nudge &mdash; your interview is still waiting for you. It takes about {duration} and the link below works any time.</p>
          <p style="margin:24px 0;" align="center">
            <a href="{interview_link}" target="_blank" style="display:inline-block; background-color:#c30361; color:#ffffff; text-decoration:none; font-size:16px; font-weight:700; padding:16px 40px; border-radius:8px;">Complete your interview</a>
          </p>
          <p style="margin:0;">Best,<br>{company_name} Recruiting</p>
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`,
	},

	KindVisaApproval: {
		Subject: "You're Invited - AI Interview with {company_name}",
		Body: `Hi {full_name},

Thanks for confirming! You are invited to an AI Interview.

Please use this link to complete your interview: {interview_link}

Best,
{company_name} Recruiting
`,
	},

	KindVisaRejection: {
		Subject: "Update on your application to {company_name}",
		Body: `Hi {full_name},

Thank you for your transparency. Unfortunately, we require a personal visa/work authorization at this time.

We will keep your resume on file for future opportunities.

Best of luck in your job search!

{company_name} Recruiting
`,
	},
}
