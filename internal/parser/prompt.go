package parser

import "fmt"

// BuildSystemPrompt returns the fixed instruction text describing the
// document layout and extraction rules for veterinary clinic receipts.
func BuildSystemPrompt() string {
	return `You are a document extraction AI that parses veterinary clinic receipts and returns strict JSON output.

Each receipt PDF includes three logical sections:
1. A client information block (name, address, ZIP).
2. A header block (invoice and receipt details, payment summary).
3. A service table with columns: Patient, Provider, Description, Date, Quantity, Subtotal, Tax, and Total.

The service table may continue across multiple pages of the PDF; treat all pages as one continuous table.

Your task:
- Identify and extract the client-level data.
- Parse only valid service table rows (ignore header rows, 'Subtotal' or 'Tax' lines, and totals at the very bottom).
- Group services by Patient name.
- For each patient, calculate the numeric sum of their 'Total' column and include it as PatientTotal.
- Return clean JSON only - no commentary, no markdown.

All dates should remain as text exactly as shown (e.g. '10/6/2025').
All monetary amounts should include a leading '$' and two decimals.`
}

// BuildExtractionPrompt returns the extraction task prompt. The
// grant-eligibility mapping lines are rendered from the same pure function
// the tests exercise, so the prompt and the code cannot drift. catchAll is
// the configured label for ZIP codes outside the program buckets.
func BuildExtractionPrompt(catchAll string) string {
	return fmt.Sprintf(`Extract the following structured information from this veterinary clinic receipt PDF.

For the client-level fields, include:
- FirstName
- LastName
- StandardizedName (proper case full name)
- ZipCode
- GrantEligibility (based on ZIP: 14211 or 14215 = '%s'; 14208 = '%s'; all others = '%s')
- InvoiceDate
- InvoiceNumber
- ReceiptDate
- ReceiptNumber
- AmountPaid
- Payment

Then, from the 'Payment History' or similar service table, capture rows that contain:
- Patient
- Provider
- Description
- Date
- Quantity
- Total (ignore Subtotal and Tax columns entirely)

Group rows by Patient name and include, for each patient:
- Name
- Provider (use the main provider if repeated)
- Items[] (list of their services)
- PatientTotal (sum of all 'Total' values for that patient)

Return one valid JSON object in the exact structure below:
{
  "Client": { ...fields... },
  "Patients": [
    {
      "Name": "",
      "Provider": "",
      "PatientTotal": "",
      "Items": [ { "Description": "", "Date": "", "Quantity": "", "Total": "" } ]
    }
  ]
}

If information is missing or illegible, use an empty string for that field.`,
		GrantEligibility("14211", catchAll),
		GrantEligibility("14208", catchAll),
		GrantEligibility("00000", catchAll),
	)
}
